package extract

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// District - венский район (1..23)
type District struct {
	Code int
	Name string
}

// ViennaDistricts в порядке номеров
var ViennaDistricts = []string{
	"Innere Stadt", "Leopoldstadt", "Landstraße", "Wieden", "Margareten",
	"Mariahilf", "Neubau", "Josefstadt", "Alsergrund", "Favoriten",
	"Simmering", "Meidling", "Hietzing", "Penzing", "Rudolfsheim-Fünfhaus",
	"Ottakring", "Hernals", "Währing", "Döbling", "Brigittenau",
	"Floridsdorf", "Donaustadt", "Liesing",
}

var (
	viennaPostalRe = regexp.MustCompile(`\b1(\d{2})0\b`)
	ordinalRe      = regexp.MustCompile(`\b(\d{1,2})\s*\.\s*bezirk`)

	districtNamesOnce sync.Once
	districtNames     []districtName
)

// neubauCode: "Neubau" - и 7. район, и обычное слово "новостройка".
// Такое совпадение берется, только если других районов в тексте нет.
const neubauCode = 7

type districtName struct {
	code int
	re   *regexp.Regexp
}

// compileDistrictNames: название целым словом, допускается прилагательное на -er ("Döblinger")
func compileDistrictNames() {
	for i, name := range FoldAll(ViennaDistricts) {
		re := regexp.MustCompile(`(?:^|[^\p{L}])` + regexp.QuoteMeta(name) + `(?:er)?(?:[^\p{L}]|$)`)
		districtNames = append(districtNames, districtName{code: i + 1, re: re})
	}
}

// districtFromName выбирает район, упомянутый в тексте раньше других.
// texts - варианты одного текста (с умляутами и без).
func districtFromName(texts ...string) (District, bool) {
	districtNamesOnce.Do(compileDistrictNames)
	best, bestPos, weak := 0, -1, 0
	for _, text := range texts {
		for _, d := range districtNames {
			loc := d.re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			if d.code == neubauCode {
				weak = d.code
				continue
			}
			if bestPos < 0 || loc[0] < bestPos {
				best, bestPos = d.code, loc[0]
			}
		}
	}
	if best == 0 {
		best = weak
	}
	if best == 0 {
		return District{}, false
	}
	return districtByCode(best)
}

func districtByCode(code int) (District, bool) {
	if code < 1 || code > len(ViennaDistricts) {
		return District{}, false
	}
	return District{Code: code, Name: ViennaDistricts[code-1]}, true
}

// DistrictFromPostal: 1010..1230 -> 1..23
func DistrictFromPostal(postal string) (District, bool) {
	m := viennaPostalRe.FindStringSubmatch(strings.TrimSpace(postal))
	if m == nil {
		return District{}, false
	}
	code, _ := strconv.Atoi(m[1])
	return districtByCode(code)
}

// ResolveViennaDistrict: индекс -> "N. Bezirk" -> название района в тексте.
// ok=false означает "не найдено", решать о пропуске объявления вызывающему.
func ResolveViennaDistrict(postal, text string) (District, bool) {
	if d, ok := DistrictFromPostal(postal); ok {
		return d, true
	}
	folded := Fold(text)
	if m := ordinalRe.FindStringSubmatch(folded); m != nil {
		code, _ := strconv.Atoi(m[1])
		if d, ok := districtByCode(code); ok {
			return d, true
		}
	}
	if m := viennaPostalRe.FindStringSubmatch(text); m != nil {
		if d, ok := DistrictFromPostal(m[0]); ok {
			return d, true
		}
	}
	return districtFromName(folded, umlautDigraphs.Replace(folded))
}

// "Doebling", "Waehring" пишут без умляутов
var umlautDigraphs = strings.NewReplacer("ae", "a", "oe", "o", "ue", "u")
