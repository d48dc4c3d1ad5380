package extract

import (
	"html"
	"regexp"
	"strings"

	"immo-parser-service/internal/core/domain"
)

// ImagePattern описывает, как на странице источника выглядят ссылки на фото
type ImagePattern struct {
	// Asset - URL фотографии на CDN источника
	Asset *regexp.Regexp
	// Thumbnail - варианты превью, которые не нужны
	Thumbnail *regexp.Regexp
}

// Collect находит ссылки на фото по порядку появления, без превью и дублей
func (p ImagePattern) Collect(body string) []string {
	if p.Asset == nil {
		return nil
	}
	body = strings.ReplaceAll(body, `\/`, `/`)
	return p.Filter(p.Asset.FindAllString(body, -1))
}

// Filter чистит готовый список ссылок (например, из JSON-атрибута)
func (p ImagePattern) Filter(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(html.UnescapeString(u))
		if u == "" {
			continue
		}
		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		if p.Thumbnail != nil && p.Thumbnail.MatchString(u) {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) == domain.MaxImages {
			break
		}
	}
	return out
}
