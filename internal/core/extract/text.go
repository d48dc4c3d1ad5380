package extract

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold приводит строку к виду для нечеткого сравнения: casefold и без диакритики.
// "Döbling" -> "dobling", "Straße" -> "strasse".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, folder.String(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRe       = regexp.MustCompile(`[ \t\f\r\v\x{00a0}]+`)
)

// StripScripts убирает <script>, <style> и <noscript> из разметки
func StripScripts(body string) string {
	return scriptStyleRe.ReplaceAllString(body, " ")
}

// VisibleText - грубый текст страницы без тегов и скриптов
func VisibleText(body string) string {
	text := tagRe.ReplaceAllString(StripScripts(body), " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// ContainsAnyFolded ищет первую фразу из списка (фразы уже свернуты Fold)
func ContainsAnyFolded(foldedText string, foldedPhrases []string) (string, bool) {
	for _, p := range foldedPhrases {
		if p != "" && strings.Contains(foldedText, p) {
			return p, true
		}
	}
	return "", false
}

// FoldAll сворачивает список фраз
func FoldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := strings.TrimSpace(Fold(s)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
