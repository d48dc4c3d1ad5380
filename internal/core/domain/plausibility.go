package domain

import "math"

// Границы правдоподобия. Значения вне диапазона отбрасываются, а не обрезаются.
const (
	MinPrice           = 50_000
	MaxStructuredPrice = 99_999_999
	MaxTextPrice       = 9_999_999

	MinArea = 10.0
	MaxArea = 1000.0

	MaxEurPerM2 = 50_000

	MaxImages         = 10
	MaxDescriptionLen = 5000
)

// minAreaByCategory - меньшие площади это, скорее всего, парковка или ошибка данных
var minAreaByCategory = map[Category]float64{
	CategoryApartment: 20,
	CategoryHouse:     40,
}

func PriceInRange(price, max int) bool {
	return price >= MinPrice && price <= max
}

func AreaInRange(area float64) bool {
	return area >= MinArea && area <= MaxArea
}

// AreaPlausibleFor проверяет площадь с учетом минимума категории
func AreaPlausibleFor(category Category, area float64) bool {
	if !AreaInRange(area) {
		return false
	}
	if min, ok := minAreaByCategory[category]; ok && area < min {
		return false
	}
	return true
}

// ComputeEurPerM2 возвращает round(price/area) или nil, если результат неправдоподобен
func ComputeEurPerM2(price int, area *float64) *int {
	if price <= 0 || area == nil || *area <= 0 {
		return nil
	}
	if !PriceInRange(price, MaxStructuredPrice) || !AreaInRange(*area) {
		return nil
	}
	v := int(math.Round(float64(price) / *area))
	if v > MaxEurPerM2 {
		return nil
	}
	return &v
}

// Finalize проверяет инварианты объявления перед отправкой и вычисляет €/m².
func (l *Listing) Finalize() error {
	if l.Price <= 0 {
		return ErrNoPrice
	}
	if !PriceInRange(l.Price, MaxStructuredPrice) {
		return ErrImplausiblePrice
	}
	if l.AreaM2 != nil && !AreaPlausibleFor(l.Category, *l.AreaM2) {
		return ErrImplausibleArea
	}
	if !l.IsPrivate {
		return ErrNotPrivate
	}
	l.URL = NormalizeURL(l.URL)
	l.EurPerM2 = ComputeEurPerM2(l.Price, l.AreaM2)
	if len(l.Images) > MaxImages {
		l.Images = l.Images[:MaxImages]
	}
	return nil
}
