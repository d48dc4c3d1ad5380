package immoscout

import (
	"fmt"
	"regexp"
	"strings"

	"immo-parser-service/internal/adapters/sources"
	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/core/classify"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/extract"
)

var (
	exposeIDRe = regexp.MustCompile(`/expose/([A-Za-z0-9]+)`)

	images = extract.ImagePattern{
		Asset:     regexp.MustCompile(`https://pictures\.immobilienscout24\.(?:at|de)/[^"'\s\\]+?\.(?:jpe?g|png|webp)`),
		Thumbnail: regexp.MustCompile(`(?i)(?:/resize/\d{2,3}x\d{2,3}|_thumb\.|/thumbnail/)`),
	}

	companySelectors = []string{
		"[data-testid='contact-company-name']",
		"[data-testid='realtor-company']",
		".contact-company",
	}
)

// Adapter - immobilienscout24.at: выдача содержит только ссылки /expose/<id>,
// признак продавца и название компании лежат в JSON детальной страницы.
type Adapter struct {
	feeds   []domain.Feed
	cascade *classify.Cascade
	phones  *extract.PhoneExtractor
}

func New(opts sources.Options) *Adapter {
	templates := opts.Feeds
	if len(templates) == 0 {
		templates = constants.ImmoscoutFeeds
	}
	return &Adapter{
		feeds:   sources.BuildFeeds(domain.SourceImmoscout, templates),
		cascade: classify.NewCascade(opts.Profile),
		phones:  extract.NewPhoneExtractor(opts.PhoneDenyList),
	}
}

func (a *Adapter) Name() domain.Source { return domain.SourceImmoscout }

func (a *Adapter) ListFeeds() []domain.Feed { return a.feeds }

func (a *Adapter) BuildPageURL(feed domain.Feed, page int) (string, error) {
	u, err := sources.PageURL(feed, page)
	if err != nil {
		return "", fmt.Errorf("immoscout adapter: %w", err)
	}
	return u, nil
}

func (a *Adapter) ExtractCandidates(body string, feed domain.Feed) ([]domain.Candidate, error) {
	cands, err := sources.DetailLinks(body, "a[href*='/expose/']", exposeIDRe, constants.ImmoscoutRoot)
	if err != nil {
		return nil, fmt.Errorf("immoscout adapter: parse search page %s: %w", feed.Key, err)
	}
	return cands, nil
}

func (a *Adapter) ExtractDetail(body string, feed domain.Feed, detailURL string) (domain.DetailResult, error) {
	if extract.IsRemoved(body) {
		return domain.DetailResult{Removed: true, Reason: "removed"}, nil
	}
	doc, err := extract.ParseDocument(body)
	if err != nil {
		return domain.DetailResult{}, fmt.Errorf("immoscout adapter: parse detail %s: %w", detailURL, err)
	}
	visible := extract.VisibleText(body)

	l := sources.NewListing(feed, sources.ExternalID(exposeIDRe, detailURL), detailURL)
	l.Title = extract.JSONString(body, "headline", "title")
	if l.Title == "" {
		l.Title = extract.Title(doc)
	}
	if price, ok := extract.Price(extract.JSONString(body, "purchasePrice", "price"), visible); ok {
		l.Price = price
	}
	l.AreaM2 = extract.Area(extract.JSONString(body, "livingArea", "livingSpace", "usableArea"), doc, visible)

	loc := extract.ResolveLocation(extract.JSONString(body, "zipCode", "postcode"), extract.JSONString(body, "city"), doc, detailURL, visible)
	l.Location, l.PostalCode = loc.Text, loc.PostalCode
	if street := extract.JSONString(body, "street"); street != "" && l.Location != "" {
		l.Location = street + ", " + l.Location
	}
	sources.ApplyDistrict(l, strings.Join([]string{extract.JSONString(body, "quarter", "district"), l.Location, l.Title}, " "))

	l.Description = extract.Description(extract.JSONString(body, "description", "descriptionNote"), doc, visible)
	l.Images = images.Collect(body)
	l.Phone = a.phones.Extract(nil, body)

	l.PublishedAt = extract.JSONTimestamp(body, "publishDate", "dateCreated", "creationDate")
	l.LastChangedAt = extract.JSONTimestamp(body, "lastModified", "dateModified", "modificationDate")
	if l.PublishedAt == nil || l.LastChangedAt == nil {
		published, changed := extract.TimestampsFromText(visible)
		if l.PublishedAt == nil {
			l.PublishedAt = published
		}
		if l.LastChangedAt == nil {
			l.LastChangedAt = changed
		}
	}
	sources.ApplyJSONCoordinates(l, extract.JSONString(body, "latitude", "lat"), extract.JSONString(body, "longitude", "lng", "lon"))

	company := extract.JSONString(body, "companyName", "realtorCompanyName")
	if company == "" {
		company = sources.FirstText(doc, companySelectors)
	}
	verdict := a.cascade.Classify(domain.ClassificationInput{
		Flag:        extract.JSONBool(body, "isPrivate"),
		CompanyName: sources.StrPtr(company),
		BodyText:    l.Title + "\n" + l.Description,
	})
	return domain.DetailResult{Listing: l, Verdict: verdict}, nil
}
