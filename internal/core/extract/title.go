package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Title: h1 -> og:title -> <title>
func Title(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	if t := collapseSpaces(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return collapseSpaces(t)
	}
	return collapseSpaces(doc.Find("title").First().Text())
}

// ParseDocument - обертка над goquery для тела страницы
func ParseDocument(body string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}
