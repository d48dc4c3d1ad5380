package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"immo-parser-service/internal/core/domain"
)

type pricePattern struct {
	name  string
	re    *regexp.Regexp
	max   int
	parse func(m []string) (int, bool)
}

// Порядок важен: первый паттерн с правдоподобным значением побеждает
var pricePatterns = []pricePattern{
	{
		name:  "millions",
		re:    regexp.MustCompile(`(?i)(?:€|eur)\s*(\d{1,2}[.\s]\d{3}[.\s]\d{3})(?:[,.]-{1,2}|,00)?\b`),
		max:   domain.MaxStructuredPrice,
		parse: groupDigits,
	},
	{
		name:  "millions_suffix",
		re:    regexp.MustCompile(`(?i)\b(\d{1,2}[.\s]\d{3}[.\s]\d{3})(?:,-{1,2}|,00)?\s*(?:€|eur)`),
		max:   domain.MaxStructuredPrice,
		parse: groupDigits,
	},
	{
		name:  "millions_word",
		re:    regexp.MustCompile(`(?i)(?:€\s*)?(\d{1,2}(?:[.,]\d{1,3})?)\s*(?:mio\.?|millionen)\b`),
		max:   domain.MaxStructuredPrice,
		parse: millionsWord,
	},
	{
		name:  "thousands",
		re:    regexp.MustCompile(`(?i)(?:€|eur)\s*(\d{1,3}[.\s]\d{3})(?:[,.]-{1,2}|,00)?\b`),
		max:   domain.MaxTextPrice,
		parse: groupDigits,
	},
	{
		name:  "thousands_suffix",
		re:    regexp.MustCompile(`(?i)\b(\d{1,3}[.\s]\d{3})(?:,-{1,2}|,00)?\s*(?:€|eur)`),
		max:   domain.MaxTextPrice,
		parse: groupDigits,
	},
	{
		name:  "bare",
		re:    regexp.MustCompile(`\b(\d{3}[.\s]\d{3})\b`),
		max:   domain.MaxTextPrice,
		parse: groupDigits,
	},
}

func groupDigits(m []string) (int, bool) {
	return atoiDigits(m[1])
}

func millionsWord(m []string) (int, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(v * 1_000_000)), true
}

func atoiDigits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || b.Len() > 10 {
		return 0, false
	}
	v, err := strconv.Atoi(b.String())
	return v, err == nil
}

// точка как разделитель тысяч: "349.000", "1.250.000", "250.500,00"
var thousandsGroupedRe = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?$`)

// ParseStructuredPrice разбирает значение ценового атрибута ("349000", "349000.00", "349.000")
func ParseStructuredPrice(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	var v int
	if thousandsGroupedRe.MatchString(raw) {
		d, ok := atoiDigits(strings.SplitN(raw, ",", 2)[0])
		if !ok {
			return 0, false
		}
		v = d
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		v = int(math.Round(f))
	} else {
		d, ok := atoiDigits(strings.SplitN(raw, ",", 2)[0])
		if !ok {
			return 0, false
		}
		v = d
	}
	if !domain.PriceInRange(v, domain.MaxStructuredPrice) {
		return 0, false
	}
	return v, true
}

// PriceFromText ищет цену в тексте по упорядоченному списку паттернов.
// Неправдоподобные значения пропускаются, а не обрезаются.
func PriceFromText(text string) (int, bool) {
	for _, p := range pricePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			v, ok := p.parse(m)
			if ok && domain.PriceInRange(v, p.max) {
				return v, true
			}
		}
	}
	return 0, false
}

// Price: структурированный атрибут, затем текст
func Price(structured, text string) (int, bool) {
	if v, ok := ParseStructuredPrice(structured); ok {
		return v, true
	}
	return PriceFromText(text)
}
