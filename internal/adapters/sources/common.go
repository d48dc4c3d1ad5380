package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/core/classify"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/extract"
)

// Options - общие настройки адаптеров
type Options struct {
	// Feeds переопределяют шаблоны по умолчанию (из SOURCES_FILE)
	Feeds         []constants.FeedTemplate
	Profile       classify.Profile
	PhoneDenyList []string
}

// BuildFeeds превращает шаблоны в фиды с ключами курсоров
func BuildFeeds(source domain.Source, templates []constants.FeedTemplate) []domain.Feed {
	feeds := make([]domain.Feed, 0, len(templates))
	for _, t := range templates {
		feeds = append(feeds, domain.Feed{
			Key:         domain.FeedKey(source, t.Category, t.Region),
			Source:      source,
			Category:    t.Category,
			Region:      t.Region,
			URLTemplate: t.URLTemplate,
		})
	}
	return feeds
}

// PageURL подставляет номер страницы в шаблон фида
func PageURL(feed domain.Feed, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("invalid page %d for feed %s", page, feed.Key)
	}
	if !strings.Contains(feed.URLTemplate, constants.PagePlaceholder) {
		return "", fmt.Errorf("feed %s template has no %s placeholder", feed.Key, constants.PagePlaceholder)
	}
	raw := strings.ReplaceAll(feed.URLTemplate, constants.PagePlaceholder, strconv.Itoa(page))
	if _, err := url.ParseRequestURI(raw); err != nil {
		return "", fmt.Errorf("feed %s: invalid url: %w", feed.Key, err)
	}
	return raw, nil
}

// Absolute достраивает относительную ссылку от корня сайта
func Absolute(root, href string) string {
	base, err := url.Parse(root)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// ApplyDistrict заполняет район для венских фидов. false - район не найден.
func ApplyDistrict(l *domain.Listing, text string) bool {
	if l.Region != domain.RegionVienna {
		return true
	}
	d, ok := extract.ResolveViennaDistrict(l.PostalCode, text)
	if !ok {
		return false
	}
	code, name := d.Code, d.Name
	l.DistrictCode = &code
	l.DistrictName = &name
	return true
}

// ApplyCoordinates заполняет координаты и geohash
func ApplyCoordinates(l *domain.Listing, lat, lon float64) {
	l.Latitude = &lat
	l.Longitude = &lon
	l.Geohash = extract.Geohash(lat, lon)
}

// NewListing - заготовка объявления для фида
func NewListing(feed domain.Feed, externalID, rawURL string) *domain.Listing {
	return &domain.Listing{
		Source:     feed.Source,
		ExternalID: externalID,
		URL:        domain.NormalizeURL(rawURL),
		FeedKey:    feed.Key,
		Category:   feed.Category,
		Region:     feed.Region,
	}
}

// StrPtr возвращает nil для пустой строки
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// DetailLinks собирает ссылки на детальные страницы со страницы выдачи.
// idRe должна содержать одну группу с идентификатором объявления; дубли отбрасываются.
func DetailLinks(body, selector string, idRe *regexp.Regexp, root string) ([]domain.Candidate, error) {
	doc, err := extract.ParseDocument(body)
	if err != nil {
		return nil, err
	}
	var (
		out  []domain.Candidate
		seen = make(map[string]struct{})
	)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := idRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if _, dup := seen[m[1]]; dup {
			return
		}
		seen[m[1]] = struct{}{}
		out = append(out, domain.Candidate{DetailURL: domain.NormalizeURL(Absolute(root, href))})
	})
	return out, nil
}

// ExternalID достает идентификатор из URL детальной страницы
func ExternalID(idRe *regexp.Regexp, rawURL string) string {
	if m := idRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

// ApplyJSONCoordinates заполняет координаты из пары строковых значений
func ApplyJSONCoordinates(l *domain.Listing, lat, lon string) {
	if lat == "" || lon == "" {
		return
	}
	if la, lo, ok := extract.ParseCoordinates(lat + "," + lon); ok {
		ApplyCoordinates(l, la, lo)
	}
}

// FirstText - текст первого непустого элемента из списка селекторов
func FirstText(doc *goquery.Document, selectors []string) string {
	if doc == nil {
		return ""
	}
	for _, sel := range selectors {
		if text := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); text != "" {
			return text
		}
	}
	return ""
}
