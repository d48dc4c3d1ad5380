package willhaben

import (
	"encoding/json"
	"regexp"
)

// Блок атрибута в JSON выдачи: {"name":"PRICE","values":["349000"]}
var (
	attrBlockRe = regexp.MustCompile(`\{"name":"([A-Za-z0-9_/.\-]+)","values":\[((?:"(?:[^"\\]|\\.)*",?)*)\]\}`)
	attrValueRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

const markerAdID = "ADID"

// attributes - значения одного объявления; первое увиденное значение побеждает
type attributes map[string][]string

func (a attributes) first(name string) string {
	if v := a[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (a attributes) firstOf(names ...string) string {
	for _, n := range names {
		if v := a.first(n); v != "" {
			return v
		}
	}
	return ""
}

// scanAttributes делит поток блоков на объявления по маркеру ADID.
// Вложенные блоки дочерних юнитов не перезаписывают поля родителя.
func scanAttributes(body string) []attributes {
	var (
		groups  []attributes
		current attributes
	)
	for _, m := range attrBlockRe.FindAllStringSubmatch(body, -1) {
		name := m[1]
		values := decodeValues(m[2])
		// повтор ADID с тем же значением не начинает новое объявление
		if name == markerAdID && (current == nil || len(values) == 0 || values[0] != current.first(markerAdID)) {
			current = attributes{}
			groups = append(groups, current)
		}
		if current == nil {
			continue
		}
		if _, seen := current[name]; seen {
			continue
		}
		current[name] = values
	}
	return groups
}

func decodeValues(raw string) []string {
	matches := attrValueRe.FindAllString(raw, -1)
	out := make([]string, 0, len(matches))
	for _, q := range matches {
		var s string
		if err := json.Unmarshal([]byte(q), &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}
