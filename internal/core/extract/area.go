package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"immo-parser-service/internal/core/domain"
)

// Элементы с подписью "Wohnfläche"/"Nutzfläche" в карточке объекта
var areaLabels = []string{"wohnfläche", "nutzfläche", "living area", "usable area", "fläche"}

var areaLabelSelectors = []string{
	"[data-testid*='area']",
	"dl dt",
	"table th",
	"li span",
	".attribute-label",
}

var (
	areaLabeledRe = regexp.MustCompile(`(?i)(?:wohnfl(?:ä|ae)che|nutzfl(?:ä|ae)che|living area|usable area)\s*:?\s*(?:ca\.?\s*)?(\d{1,4}(?:[.,]\d{1,2})?)\s*(?:m²|m2|qm)`)
	areaGenericRe = regexp.MustCompile(`(?i)\b(\d{1,4}(?:[.,]\d{1,2})?)\s*(?:m²|m2\b|qm\b)`)
	areaValueRe   = regexp.MustCompile(`(\d{1,4}(?:[.,]\d{1,2})?)`)
)

// ParseArea разбирает "75,5", "75.5 m²", "120" и проверяет диапазон
func ParseArea(raw string) (float64, bool) {
	m := areaValueRe.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil || !domain.AreaInRange(v) {
		return 0, false
	}
	return v, true
}

// AreaFromDoc ищет подписанный элемент площади и берет значение из соседнего узла
func AreaFromDoc(doc *goquery.Document) (float64, bool) {
	if doc == nil {
		return 0, false
	}
	for _, sel := range areaLabelSelectors {
		var (
			found float64
			ok    bool
		)
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			label := strings.ToLower(strings.TrimSpace(s.Text()))
			if !hasAnyPrefix(label, areaLabels) {
				return true
			}
			value := s.Next().Text()
			if strings.TrimSpace(value) == "" {
				value = strings.TrimPrefix(s.Parent().Text(), s.Text())
			}
			found, ok = ParseArea(value)
			return !ok
		})
		if ok {
			return found, true
		}
	}
	return 0, false
}

// AreaFromText: сначала подписанное значение, затем любое "NN m²"
func AreaFromText(text string) (float64, bool) {
	for _, re := range []*regexp.Regexp{areaLabeledRe, areaGenericRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := ParseArea(m[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// Area проходит источники по приоритету и возвращает nil, если площадь не найдена
func Area(structured string, doc *goquery.Document, text string) *float64 {
	if v, ok := ParseArea(structured); ok {
		return &v
	}
	if v, ok := AreaFromDoc(doc); ok {
		return &v
	}
	if v, ok := AreaFromText(text); ok {
		return &v
	}
	return nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
