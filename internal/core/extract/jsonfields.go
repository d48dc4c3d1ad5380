package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"
)

// Регулярки по ключу компилируются один раз
var jsonKeyCache sync.Map

func jsonKeyRe(key string) *regexp.Regexp {
	if re, ok := jsonKeyCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*("(?:[^"\\]|\\.)*"|-?\d+(?:\.\d+)?|true|false|null)`)
	jsonKeyCache.Store(key, re)
	return re
}

// jsonRaw возвращает первое скалярное значение ключа во встроенном JSON страницы
func jsonRaw(body string, keys ...string) (string, bool) {
	for _, key := range keys {
		if m := jsonKeyRe(key).FindStringSubmatch(body); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// JSONString - строковое или числовое значение первого найденного ключа
func JSONString(body string, keys ...string) string {
	for _, key := range keys {
		raw, ok := jsonRaw(body, key)
		if !ok || raw == "null" {
			continue
		}
		if strings.HasPrefix(raw, `"`) {
			var s string
			if err := json.Unmarshal([]byte(raw), &s); err != nil {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		return raw
	}
	return ""
}

// JSONBool возвращает nil, если ключа нет или значение null
func JSONBool(body string, key string) *bool {
	raw, ok := jsonRaw(body, key)
	if !ok {
		return nil
	}
	var v bool
	switch raw {
	case "true", `"true"`:
		v = true
	case "false", `"false"`:
		v = false
	default:
		return nil
	}
	return &v
}
