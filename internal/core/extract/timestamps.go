package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var vienna = loadVienna()

func loadVienna() *time.Location {
	loc, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		return time.UTC
	}
	return loc
}

var (
	germanDateRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})(?:,?\s*(\d{1,2}):(\d{2}))?`)
	changedRe    = regexp.MustCompile(`(?i)zuletzt\s+ge(?:ä|ae)ndert\s*:?\s*(\d{1,2}\.\d{1,2}\.\d{4}(?:,?\s*\d{1,2}:\d{2})?)`)
	publishedRe  = regexp.MustCompile(`(?i)ver(?:ö|oe)ffentlicht(?:\s+am)?\s*:?\s*(\d{1,2}\.\d{1,2}\.\d{4}(?:,?\s*\d{1,2}:\d{2})?)`)
)

// ParseTimestamp понимает RFC3339, epoch в миллисекундах/секундах и "dd.mm.yyyy[, HH:MM]"
func ParseTimestamp(raw string) *time.Time {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, vienna); err == nil {
			return &t
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 1e9 {
		var t time.Time
		if n > 1e11 {
			t = time.UnixMilli(n).UTC()
		} else {
			t = time.Unix(n, 0).UTC()
		}
		return &t
	}
	if m := germanDateRe.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour, minute := 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
			return nil
		}
		t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, vienna)
		return &t
	}
	return nil
}

// JSONTimestamp ищет первое значение из ключей во встроенном JSON страницы
func JSONTimestamp(body string, keys ...string) *time.Time {
	for _, key := range keys {
		if m := jsonKeyRe(key).FindStringSubmatch(body); m != nil {
			if t := ParseTimestamp(m[1]); t != nil {
				return t
			}
		}
	}
	return nil
}

// TimestampsFromText достает даты из подписей "Veröffentlicht" и "Zuletzt geändert"
func TimestampsFromText(text string) (published, changed *time.Time) {
	if m := publishedRe.FindStringSubmatch(text); m != nil {
		published = ParseTimestamp(m[1])
	}
	if m := changedRe.FindStringSubmatch(text); m != nil {
		changed = ParseTimestamp(m[1])
	}
	return published, changed
}
