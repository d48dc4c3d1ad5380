package willhaben

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

const (
	seoURLBase = "https://www.willhaben.at/iad/"
	imageBase  = "https://cache.willhaben.at/mmo/"
)

var images = extract.ImagePattern{
	Asset:     regexp.MustCompile(`https://cache\.willhaben\.at/mmo/[^"'\s;]+\.(?:jpe?g|png|webp)`),
	Thumbnail: regexp.MustCompile(`(?i)_(?:thumb|hoved|sm)\.(?:jpe?g|png|webp)$`),
}

// Adapter разбирает выдачу willhaben: все поля объявления есть прямо в JSON страницы,
// поэтому детальные страницы не загружаются.
type Adapter struct {
	feeds           []domain.Feed
	cascade         *classify.Cascade
	phones          *extract.PhoneExtractor
	requireDistrict bool
}

// Options - настройки адаптера willhaben
type Options struct {
	sources.Options
	// RequireDistrict пропускает венские объявления без распознанного района
	RequireDistrict bool
}

func New(opts Options) *Adapter {
	templates := opts.Feeds
	if len(templates) == 0 {
		templates = constants.WillhabenFeeds
	}
	return &Adapter{
		feeds:           sources.BuildFeeds(domain.SourceWillhaben, templates),
		cascade:         classify.NewCascade(opts.Profile),
		phones:          extract.NewPhoneExtractor(opts.PhoneDenyList),
		requireDistrict: opts.RequireDistrict,
	}
}

func (a *Adapter) Name() domain.Source { return domain.SourceWillhaben }

func (a *Adapter) ListFeeds() []domain.Feed { return a.feeds }

func (a *Adapter) BuildPageURL(feed domain.Feed, page int) (string, error) {
	u, err := sources.PageURL(feed, page)
	if err != nil {
		return "", fmt.Errorf("willhaben adapter: %w", err)
	}
	return u, nil
}

// ExtractCandidates возвращает inline-кандидатов с готовым вердиктом
func (a *Adapter) ExtractCandidates(body string, feed domain.Feed) ([]domain.Candidate, error) {
	groups := scanAttributes(body)
	out := make([]domain.Candidate, 0, len(groups))
	for _, attrs := range groups {
		listing, verdict, ok := a.build(attrs, feed)
		if !ok {
			continue
		}
		v := verdict
		out = append(out, domain.Candidate{DetailURL: listing.URL, Listing: listing, Verdict: &v})
	}
	return out, nil
}

// ExtractDetail разбирает страницу объявления: там тот же формат атрибутов
func (a *Adapter) ExtractDetail(body string, feed domain.Feed, detailURL string) (domain.DetailResult, error) {
	if extract.IsRemoved(body) {
		return domain.DetailResult{Removed: true, Reason: "removed"}, nil
	}
	groups := scanAttributes(body)
	if len(groups) == 0 {
		return domain.DetailResult{}, fmt.Errorf("willhaben adapter: no attributes on %s", detailURL)
	}
	listing, verdict, ok := a.build(groups[0], feed)
	if !ok {
		return domain.DetailResult{Verdict: verdict, Reason: "incomplete"}, nil
	}
	if listing.URL == "" {
		listing.URL = domain.NormalizeURL(detailURL)
	}
	var extra []string
	if listing.Phone != nil {
		extra = append(extra, *listing.Phone)
	}
	listing.Phone = a.phones.Extract(extra, body)
	return domain.DetailResult{Listing: listing, Verdict: verdict}, nil
}

func (a *Adapter) build(attrs attributes, feed domain.Feed) (*domain.Listing, domain.Verdict, bool) {
	id := attrs.first(markerAdID)
	seo := attrs.first("SEO_URL")
	if id == "" || seo == "" {
		return nil, domain.Verdict{}, false
	}
	l := sources.NewListing(feed, id, sources.Absolute(seoURLBase, strings.TrimPrefix(seo, "/")))

	l.Title = strings.TrimSpace(attrs.first("HEADING"))
	body := strings.TrimSpace(attrs.first("BODY_DYN") + " " + attrs.first("DESCRIPTION"))

	if price, ok := extract.Price(attrs.firstOf("PRICE", "PRICE/AMOUNT"), attrs.first("PRICE_FOR_DISPLAY")); ok {
		l.Price = price
	}
	l.AreaM2 = extract.Area(attrs.firstOf("ESTATE_SIZE/LIVING_AREA", "ESTATE_SIZE/USEABLE_AREA", "ESTATE_SIZE"), nil, body)

	address := strings.TrimSpace(attrs.first("ADDRESS"))
	loc := extract.ResolveLocation(attrs.first("POSTCODE"), attrs.first("LOCATION"), nil, l.URL, address)
	l.Location, l.PostalCode = loc.Text, loc.PostalCode
	switch {
	case address == "" || strings.Contains(l.Location, address):
	case l.Location == "":
		l.Location = address
	default:
		l.Location = address + ", " + l.Location
	}

	districtText := strings.Join([]string{attrs.first("DISTRICT"), attrs.first("LOCATION"), address, l.Title}, " ")
	if !sources.ApplyDistrict(l, districtText) && a.requireDistrict {
		return nil, domain.Verdict{}, false
	}

	l.Images = images.Filter(imageURLs(attrs.first("ALL_IMAGE_URLS")))
	l.Description = extract.CleanDescription(body)

	l.PublishedAt = extract.ParseTimestamp(attrs.firstOf("PUBLISHED", "PUBLISHED_String"))
	l.LastChangedAt = extract.ParseTimestamp(attrs.first("CHANGED"))

	if lat, lon, ok := extract.ParseCoordinates(attrs.first("COORDINATES")); ok {
		sources.ApplyCoordinates(l, lat, lon)
	}
	if phone := attrs.firstOf("PHONE_NUMBER", "CONTACT/PHONE"); phone != "" {
		l.Phone = a.phones.Extract([]string{phone}, "")
	}

	verdict := a.cascade.Classify(domain.ClassificationInput{
		Flag:        privateFlag(attrs.first("ISPRIVATE")),
		CompanyName: sources.StrPtr(attrs.first("ORGNAME")),
		BodyText:    body,
	})
	return l, verdict, true
}

// imageURLs разбирает "a/b.jpg;c/d.jpg" относительно CDN
func imageURLs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, "http") {
			part = imageBase + strings.TrimPrefix(part, "/")
		}
		out = append(out, part)
	}
	return out
}

func privateFlag(raw string) *bool {
	var v bool
	switch strings.TrimSpace(raw) {
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil
	}
	return &v
}
