package constants

// Обменник для событий парсера
const (
	ExchangeName = "immo_parser_exchange"
	ExchangeType = "topic"
)

// Ключи маршрутизации
const (
	RoutingKeyListingFound = "immo.listings.found"
	RoutingKeyPhoneFound   = "immo.phones.found"
)

// Заголовки событий
const (
	EventTypeListingFound = "ListingFoundEvent"
	EventTypePhoneFound   = "PhoneFoundEvent"
	EventVersion          = "1.0.0"
)
