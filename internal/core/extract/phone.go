package extract

import (
	"regexp"
	"strings"
)

const (
	defaultCountryCode = "43"
	minPhoneDigits     = 8
)

// DefaultMobilePrefixes - австрийские мобильные префиксы в национальном формате
var DefaultMobilePrefixes = []string{
	"0650", "0660", "0664", "0676", "0677", "0678", "0680",
	"0681", "0688", "0699", "0670", "0690", "0644",
}

var (
	phoneAttrRe = regexp.MustCompile(`(?i)"(?:phone|phoneNumber|telephone|tel|mobile|contactPhone|PHONE_NUMBER)"\s*:\s*"([+\d][\d\s/().\-]{6,24})"`)
	phoneTelRe  = regexp.MustCompile(`(?i)href\s*=\s*["']tel:([+\d][\d\s/().\-%20]{6,30})["']`)
	phoneScanRe = regexp.MustCompile(`(?:\+43|0043)[\s\-/]?\(?0?\)?[1-9]\d{1,4}[\s\-/]?\d{3,8}(?:[\s\-]?\d{1,4})?|\b0[1-9]\d{1,4}[\s\-/]?\d{3,8}(?:[\s\-]?\d{1,4})?`)
	nonPhoneRe  = regexp.MustCompile(`[^\d+]`)
)

// PhoneExtractor выбирает лучший номер продавца из кандидатов страницы
type PhoneExtractor struct {
	deny           map[string]struct{}
	mobilePrefixes []string
}

// NewPhoneExtractor строит экстрактор со списком запрещенных номеров
// (заглушки, номера поддержки площадки).
func NewPhoneExtractor(denyList []string) *PhoneExtractor {
	p := &PhoneExtractor{deny: make(map[string]struct{}), mobilePrefixes: DefaultMobilePrefixes}
	for _, raw := range denyList {
		for _, form := range phoneForms(NormalizePhone(raw)) {
			p.deny[form] = struct{}{}
		}
	}
	return p
}

// NormalizePhone оставляет только цифры и плюс; 0043 приводится к +43
func NormalizePhone(raw string) string {
	s := nonPhoneRe.ReplaceAllString(strings.TrimSpace(raw), "")
	plus := strings.HasPrefix(s, "+")
	s = strings.ReplaceAll(s, "+", "")
	switch {
	case plus:
		s = "+" + s
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	}
	// +43 (0) 660 ... -> +43660...
	if strings.HasPrefix(s, "+"+defaultCountryCode+"0") {
		s = "+" + defaultCountryCode + s[len(defaultCountryCode)+2:]
	}
	return s
}

// phoneForms - сырая форма, национальная (+43 -> 0) и без ведущего нуля
func phoneForms(n string) []string {
	if n == "" {
		return nil
	}
	forms := []string{n}
	national := n
	if strings.HasPrefix(n, "+"+defaultCountryCode) {
		national = "0" + n[len(defaultCountryCode)+1:]
		forms = append(forms, national)
	}
	if stripped := strings.TrimLeft(national, "0+"); stripped != "" {
		forms = append(forms, stripped)
	}
	return forms
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Allowed сообщает, годится ли нормализованный номер
func (p *PhoneExtractor) Allowed(normalized string) bool {
	if digitCount(normalized) < minPhoneDigits {
		return false
	}
	for _, form := range phoneForms(normalized) {
		if _, ok := p.deny[form]; ok {
			return false
		}
	}
	return true
}

// Score: +3 код страны, +2 мобильный префикс, +1 длина от 10 цифр
func (p *PhoneExtractor) Score(normalized string) int {
	score := 0
	national := normalized
	if strings.HasPrefix(normalized, "+") {
		score += 3
		if strings.HasPrefix(normalized, "+"+defaultCountryCode) {
			national = "0" + normalized[len(defaultCountryCode)+1:]
		}
	}
	for _, prefix := range p.mobilePrefixes {
		if strings.HasPrefix(national, prefix) {
			score += 2
			break
		}
	}
	if digitCount(normalized) >= 10 {
		score++
	}
	return score
}

// Best выбирает номер с максимальным счетом; при равенстве побеждает ранний кандидат
func (p *PhoneExtractor) Best(candidates []string) (string, bool) {
	best, bestScore := "", -1
	seen := make(map[string]struct{}, len(candidates))
	for _, raw := range candidates {
		n := NormalizePhone(raw)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if !p.Allowed(n) {
			continue
		}
		if s := p.Score(n); s > bestScore {
			best, bestScore = n, s
		}
	}
	return best, bestScore >= 0
}

// Candidates собирает номера по приоритету источников:
// JSON-атрибуты, ссылки tel:, затем сканирование разметки без скриптов.
func Candidates(body string) []string {
	var out []string
	for _, m := range phoneAttrRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	for _, m := range phoneTelRe.FindAllStringSubmatch(body, -1) {
		out = append(out, strings.ReplaceAll(m[1], "%20", ""))
	}
	visible := tagRe.ReplaceAllString(StripScripts(body), " ")
	out = append(out, phoneScanRe.FindAllString(visible, -1)...)
	return out
}

// Extract возвращает лучший номер страницы или nil
func (p *PhoneExtractor) Extract(extra []string, body string) *string {
	candidates := append(append([]string{}, extra...), Candidates(body)...)
	if phone, ok := p.Best(candidates); ok {
		return &phone
	}
	return nil
}
