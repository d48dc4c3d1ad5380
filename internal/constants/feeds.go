package constants

import "immo-parser-service/internal/core/domain"

// PagePlaceholder подставляется номером страницы в шаблон URL фида
const PagePlaceholder = "{page}"

// FeedTemplate - шаблон URL выдачи для одной категории и региона
type FeedTemplate struct {
	Category    domain.Category
	Region      domain.Region
	URLTemplate string
}

// Порядок фидов фиксирован: обход идет строго по этим спискам
var (
	WillhabenFeeds = []FeedTemplate{
		{domain.CategoryApartment, domain.RegionVienna, "https://www.willhaben.at/iad/immobilien/eigentumswohnung/wien?rows=30&page={page}"},
		{domain.CategoryHouse, domain.RegionVienna, "https://www.willhaben.at/iad/immobilien/haus-kaufen/wien?rows=30&page={page}"},
		{domain.CategoryLand, domain.RegionVienna, "https://www.willhaben.at/iad/immobilien/grundstuecke/wien?rows=30&page={page}"},
		{domain.CategoryApartment, domain.RegionLowerAustria, "https://www.willhaben.at/iad/immobilien/eigentumswohnung/niederoesterreich?rows=30&page={page}"},
		{domain.CategoryHouse, domain.RegionLowerAustria, "https://www.willhaben.at/iad/immobilien/haus-kaufen/niederoesterreich?rows=30&page={page}"},
		{domain.CategoryLand, domain.RegionLowerAustria, "https://www.willhaben.at/iad/immobilien/grundstuecke/niederoesterreich?rows=30&page={page}"},
	}

	ImmoscoutFeeds = []FeedTemplate{
		{domain.CategoryApartment, domain.RegionVienna, "https://www.immobilienscout24.at/regional/wien/wien/wohnung-kaufen/seite-{page}"},
		{domain.CategoryHouse, domain.RegionVienna, "https://www.immobilienscout24.at/regional/wien/wien/haus-kaufen/seite-{page}"},
		{domain.CategoryApartment, domain.RegionLowerAustria, "https://www.immobilienscout24.at/regional/niederoesterreich/wohnung-kaufen/seite-{page}"},
		{domain.CategoryHouse, domain.RegionLowerAustria, "https://www.immobilienscout24.at/regional/niederoesterreich/haus-kaufen/seite-{page}"},
		{domain.CategoryLand, domain.RegionLowerAustria, "https://www.immobilienscout24.at/regional/niederoesterreich/grundstueck-kaufen/seite-{page}"},
	}

	DerStandardFeeds = []FeedTemplate{
		{domain.CategoryApartment, domain.RegionVienna, "https://immobilien.derstandard.at/suche/wien/kaufen-wohnung?page={page}"},
		{domain.CategoryHouse, domain.RegionVienna, "https://immobilien.derstandard.at/suche/wien/kaufen-haus?page={page}"},
		{domain.CategoryApartment, domain.RegionLowerAustria, "https://immobilien.derstandard.at/suche/niederoesterreich/kaufen-wohnung?page={page}"},
		{domain.CategoryHouse, domain.RegionLowerAustria, "https://immobilien.derstandard.at/suche/niederoesterreich/kaufen-haus?page={page}"},
	}
)

// Корни сайтов, от них достраиваются относительные ссылки
const (
	ImmoscoutRoot   = "https://www.immobilienscout24.at/"
	DerStandardRoot = "https://immobilien.derstandard.at/"
)
