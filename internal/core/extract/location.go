package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Location - текстовый адрес и почтовый индекс, если удалось найти
type Location struct {
	Text       string
	PostalCode string
}

var locationSelectors = []string{
	"[data-testid='object-location-address']",
	"[data-testid*='location']",
	".address",
	".location",
	"[itemprop='address']",
}

var (
	postalRe       = regexp.MustCompile(`\b([1-9]\d{3})\b`)
	urlPostalRe    = regexp.MustCompile(`/([1-9]\d{3})-[a-z]`)
	streetSuffixRe = regexp.MustCompile(`(?i)([A-ZÄÖÜ][\p{L}\-]*(?:straße|strasse|gasse|weg|platz|allee|ring|zeile|kai|promenade|steig|hof))(?:\s+(\d{1,4}[a-z]?))?`)
)

// LocationFromStructured склеивает пару индекс + город
func LocationFromStructured(postal, city string) (Location, bool) {
	postal = strings.TrimSpace(postal)
	city = strings.TrimSpace(city)
	if postal == "" && city == "" {
		return Location{}, false
	}
	return Location{Text: strings.TrimSpace(postal + " " + city), PostalCode: postalCode(postal)}, true
}

// LocationFromDoc берет адрес из известных блоков карточки
func LocationFromDoc(doc *goquery.Document) (Location, bool) {
	if doc == nil {
		return Location{}, false
	}
	for _, sel := range locationSelectors {
		text := collapseSpaces(doc.Find(sel).First().Text())
		if text != "" {
			return Location{Text: text, PostalCode: postalCode(text)}, true
		}
	}
	return Location{}, false
}

// PostalFromURL ищет индекс в slug URL ("/1100-wien-favoriten/")
func PostalFromURL(rawURL string) string {
	if m := urlPostalRe.FindStringSubmatch(strings.ToLower(rawURL)); m != nil {
		return m[1]
	}
	return ""
}

// LocationFromText - последний шанс: улица по типичному суффиксу
func LocationFromText(text string) (Location, bool) {
	m := streetSuffixRe.FindStringSubmatch(text)
	if m == nil {
		return Location{}, false
	}
	return Location{Text: strings.TrimSpace(m[1] + " " + m[2])}, true
}

// ResolveLocation проходит источники по приоритету
func ResolveLocation(postal, city string, doc *goquery.Document, pageURL, text string) Location {
	if loc, ok := LocationFromStructured(postal, city); ok {
		return loc
	}
	if loc, ok := LocationFromDoc(doc); ok {
		return loc
	}
	if code := PostalFromURL(pageURL); code != "" {
		return Location{Text: code, PostalCode: code}
	}
	if loc, ok := LocationFromText(text); ok {
		return loc
	}
	return Location{}
}

func postalCode(s string) string {
	if m := postalRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
