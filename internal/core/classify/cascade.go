package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/extract"
)

// Ступени каскада
const (
	StageFlag            = 1
	StageFeeLanguage     = 2
	StageCompanyName     = 3
	StageCompanySentinel = 4
	StageBodyText        = 5
	StageDefault         = 6
)

// короткие ключевые слова ("kg", "ag", "ehl") ищем только как отдельные слова
const shortKeywordLen = 4

type keyword struct {
	folded string
	re     *regexp.Regexp
}

// Cascade - детерминированная процедура классификации продавца.
// Ступени проверяются сверху вниз, первая сработавшая принимает решение.
type Cascade struct {
	keywords   []keyword
	sentinels  []string
	commission []string
	negated    []string
	private    []string
}

// NewCascade компилирует профиль
func NewCascade(p Profile) *Cascade {
	c := &Cascade{
		sentinels:  extract.FoldAll(p.PrivateSentinels),
		commission: extract.FoldAll(p.CommissionPhrases),
		negated:    extract.FoldAll(p.NegatedCommission),
		private:    extract.FoldAll(p.PrivatePhrases),
	}
	for _, kw := range extract.FoldAll(p.CommercialKeywords) {
		k := keyword{folded: kw}
		if utf8.RuneCountInString(kw) <= shortKeywordLen {
			k.re = regexp.MustCompile(`(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(kw) + `($|[^\p{L}\p{N}])`)
		}
		c.keywords = append(c.keywords, k)
	}
	return c
}

// Classify выносит вердикт. Неопределенность всегда означает блокировку.
func (c *Cascade) Classify(in domain.ClassificationInput) domain.Verdict {
	company := ""
	if in.CompanyName != nil {
		company = strings.TrimSpace(extract.Fold(*in.CompanyName))
	}
	body := extract.Fold(in.BodyText)

	if in.Flag != nil {
		if !*in.Flag {
			return blocked(StageFlag, "seller flag marks listing as commercial")
		}
		if phrase, ok := c.commissionPhrase(body); ok {
			return blocked(StageFeeLanguage, fmt.Sprintf("flag true but fee language present: %q", phrase))
		}
		if kw, ok := c.companyKeyword(company); ok {
			return blocked(StageCompanyName, fmt.Sprintf("company name matches commercial keyword %q", kw))
		}
		return allowed(StageCompanyName, "seller flag private, no fee language, no company keyword")
	}

	if kw, ok := c.companyKeyword(company); ok {
		return blocked(StageCompanyName, fmt.Sprintf("company name matches commercial keyword %q", kw))
	}
	for _, s := range c.sentinels {
		if company == s {
			return allowed(StageCompanySentinel, "company name is private sentinel")
		}
	}
	if phrase, ok := c.commissionPhrase(body); ok {
		return blocked(StageBodyText, fmt.Sprintf("commission phrase in text: %q", phrase))
	}
	if phrase, ok := extract.ContainsAnyFolded(body, c.private); ok {
		return allowed(StageBodyText, fmt.Sprintf("private seller phrase in text: %q", phrase))
	}
	return blocked(StageDefault, "no decisive seller signal, blocked by default")
}

func (c *Cascade) companyKeyword(company string) (string, bool) {
	if company == "" {
		return "", false
	}
	for _, k := range c.keywords {
		if k.re != nil {
			if k.re.MatchString(company) {
				return k.folded, true
			}
			continue
		}
		if strings.Contains(company, k.folded) {
			return k.folded, true
		}
	}
	return "", false
}

func (c *Cascade) commissionPhrase(foldedBody string) (string, bool) {
	text := foldedBody
	for _, n := range c.negated {
		text = strings.ReplaceAll(text, n, " ")
	}
	return extract.ContainsAnyFolded(text, c.commission)
}

func blocked(stage int, reason string) domain.Verdict {
	return domain.Verdict{Allowed: false, Stage: stage, Reason: reason}
}

func allowed(stage int, reason string) domain.Verdict {
	return domain.Verdict{Allowed: true, Stage: stage, Reason: reason}
}
