package port

// EgressIdentity - один исходящий сетевой идентификатор (прокси)
type EgressIdentity struct {
	Label    string
	ProxyURL string
}

// EgressPort выдает идентификаторы по кругу.
// nil означает прямое соединение и не является ошибкой.
type EgressPort interface {
	Acquire() *EgressIdentity
	Usage() map[string]uint64
}
