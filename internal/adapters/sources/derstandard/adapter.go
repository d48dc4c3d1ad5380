package derstandard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"immo-parser-service/internal/adapters/sources"
	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/core/classify"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/extract"
)

var (
	detailIDRe = regexp.MustCompile(`/detail/(\d+)`)

	images = extract.ImagePattern{
		Asset:     regexp.MustCompile(`https://[a-z0-9.\-]*derstandard\.at/[^"'\s\\]+?\.(?:jpe?g|png|webp)`),
		Thumbnail: regexp.MustCompile(`(?i)(?:/thumb/|_thumb\.|/w\d{2,3}/|logo)`),
	}

	contactSelectors = []string{
		"[data-testid='contact-box']",
		".contact-box",
		".sc-contact",
		"aside .contact",
	}
	companySelectors = []string{
		"[data-testid='contact-company']",
		".contact-box .company",
		".sc-contact-company",
		".contact .company-name",
	}
	priceSelectors = []string{
		"[data-testid='price']",
		".price",
		".sc-price",
	}
)

// Adapter - immobilien.derstandard.at: признака частного продавца нет,
// решение принимается по блоку контактов и тексту объявления.
type Adapter struct {
	feeds   []domain.Feed
	cascade *classify.Cascade
	phones  *extract.PhoneExtractor
}

func New(opts sources.Options) *Adapter {
	templates := opts.Feeds
	if len(templates) == 0 {
		templates = constants.DerStandardFeeds
	}
	return &Adapter{
		feeds:   sources.BuildFeeds(domain.SourceDerStandard, templates),
		cascade: classify.NewCascade(opts.Profile),
		phones:  extract.NewPhoneExtractor(opts.PhoneDenyList),
	}
}

func (a *Adapter) Name() domain.Source { return domain.SourceDerStandard }

func (a *Adapter) ListFeeds() []domain.Feed { return a.feeds }

func (a *Adapter) BuildPageURL(feed domain.Feed, page int) (string, error) {
	u, err := sources.PageURL(feed, page)
	if err != nil {
		return "", fmt.Errorf("derstandard adapter: %w", err)
	}
	return u, nil
}

func (a *Adapter) ExtractCandidates(body string, feed domain.Feed) ([]domain.Candidate, error) {
	cands, err := sources.DetailLinks(body, "a[href*='/detail/']", detailIDRe, constants.DerStandardRoot)
	if err != nil {
		return nil, fmt.Errorf("derstandard adapter: parse search page %s: %w", feed.Key, err)
	}
	return cands, nil
}

func (a *Adapter) ExtractDetail(body string, feed domain.Feed, detailURL string) (domain.DetailResult, error) {
	if extract.IsRemoved(body) {
		return domain.DetailResult{Removed: true, Reason: "removed"}, nil
	}
	doc, err := extract.ParseDocument(body)
	if err != nil {
		return domain.DetailResult{}, fmt.Errorf("derstandard adapter: parse detail %s: %w", detailURL, err)
	}
	visible := extract.VisibleText(body)
	contact := sources.FirstText(doc, contactSelectors)

	l := sources.NewListing(feed, sources.ExternalID(detailIDRe, detailURL), detailURL)
	l.Title = extract.Title(doc)

	priceText := sources.FirstText(doc, priceSelectors) + "\n" + visible
	if price, ok := extract.Price(extract.JSONString(body, "price"), priceText); ok {
		l.Price = price
	}
	l.AreaM2 = extract.Area(extract.JSONString(body, "floorSize", "livingArea"), doc, visible)

	loc := extract.ResolveLocation(extract.JSONString(body, "postalCode"), extract.JSONString(body, "addressLocality"), doc, detailURL, visible)
	l.Location, l.PostalCode = loc.Text, loc.PostalCode
	sources.ApplyDistrict(l, strings.Join([]string{l.Location, l.Title, extract.JSONString(body, "addressRegion")}, " "))

	l.Description = extract.Description(extract.JSONString(body, "description"), doc, visible)
	l.Images = images.Collect(body)
	l.Phone = a.phones.Extract(nil, body)

	l.PublishedAt = extract.JSONTimestamp(body, "datePosted", "datePublished")
	l.LastChangedAt = extract.JSONTimestamp(body, "dateModified")
	published, changed := extract.TimestampsFromText(visible)
	if l.PublishedAt == nil {
		l.PublishedAt = published
	}
	if l.LastChangedAt == nil {
		l.LastChangedAt = changed
	}
	sources.ApplyJSONCoordinates(l, extract.JSONString(body, "latitude"), extract.JSONString(body, "longitude"))

	verdict := a.cascade.Classify(domain.ClassificationInput{
		CompanyName: sources.StrPtr(companyName(doc)),
		BodyText:    l.Title + "\n" + l.Description + "\n" + contact,
	})
	return domain.DetailResult{Listing: l, Verdict: verdict}, nil
}

// companyName: отдельный элемент с названием или первая строка блока контактов
func companyName(doc *goquery.Document) string {
	if name := sources.FirstText(doc, companySelectors); name != "" {
		return name
	}
	for _, sel := range contactSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if name := strings.TrimSpace(s.Find("strong, h3, h4").First().Text()); name != "" {
			return name
		}
	}
	return ""
}
