package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"immo-parser-service/internal/core/domain"
)

var (
	descriptionLabeled = []string{
		"[data-testid='ad-description-Objektbeschreibung']",
		"[data-testid*='description']",
		"[itemprop='description']",
	}
	descriptionCommon = []string{
		".description",
		"#description",
		".object-description",
		".expose-description",
		"article .text",
	}
	descriptionHeadings = []string{"beschreibung", "objektbeschreibung", "description"}

	descriptionTextRe = regexp.MustCompile(`(?is)(?:objektbeschreibung|beschreibung|description)\s*:?\s*(.{20,}?)\s*(?:kontakt|contact|ausstattung|amenities|lage|location|€|preis|$)`)

	boilerplateMarkers = []string{
		"jetzt kontaktieren", "contact now", "finanzierungsbeispiel", "financing example",
		"angaben ohne gewähr", "impressum", "datenschutz", "haftungsausschluss",
	}

	// индексы совпадения берутся по исходной строке, а не по ее нижнему регистру
	boilerplateRe = compileMarkers(boilerplateMarkers)

	newlinesRe = regexp.MustCompile(`\n{3,}`)
	blanksRe   = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

func compileMarkers(markers []string) *regexp.Regexp {
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// DescriptionFromDoc: подписанный элемент -> общие селекторы -> соседи заголовка "Beschreibung"
func DescriptionFromDoc(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	for _, group := range [][]string{descriptionLabeled, descriptionCommon} {
		for _, sel := range group {
			if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
				return text
			}
		}
	}
	var out string
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		title := strings.ToLower(strings.TrimSpace(h.Text()))
		if !hasAnyPrefix(title, descriptionHeadings) {
			return true
		}
		var parts []string
		for s := h.Next(); s.Length() > 0; s = s.Next() {
			if s.Is("h1, h2, h3, h4, section") {
				break
			}
			if t := strings.TrimSpace(s.Text()); t != "" {
				parts = append(parts, t)
			}
		}
		out = strings.Join(parts, "\n")
		return out == ""
	})
	return out
}

// DescriptionFromText вырезает текст между меткой и следующим разделом
func DescriptionFromText(text string) string {
	if m := descriptionTextRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// CleanDescription обрезает служебный хвост, сжимает пробелы и ограничивает длину
func CleanDescription(s string) string {
	if loc := boilerplateRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = blanksRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = newlinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > domain.MaxDescriptionLen {
		s = strings.TrimSpace(string([]rune(s)[:domain.MaxDescriptionLen]))
	}
	return s
}

// Description проходит источники по приоритету и чистит результат
func Description(structured string, doc *goquery.Document, text string) string {
	raw := strings.TrimSpace(structured)
	if raw == "" {
		raw = DescriptionFromDoc(doc)
	}
	if raw == "" {
		raw = DescriptionFromText(text)
	}
	return CleanDescription(raw)
}
