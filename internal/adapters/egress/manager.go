package egress

import (
	"fmt"
	"net/url"
	"sync"

	"immo-parser-service/internal/core/port"
)

// DefaultPoolSize - сколько прокси держим в ротации
const DefaultPoolSize = 2

// Manager выдает прокси по кругу и считает, сколько раз выдан каждый
type Manager struct {
	mu         sync.Mutex
	identities []port.EgressIdentity
	counters   []uint64
	next       int
}

// NewManager разбирает список прокси. Пустой список или direct=true дают прямое соединение.
// Некорректный URL прокси - ошибка конфигурации.
func NewManager(proxyURLs []string, poolSize int, direct bool) (*Manager, error) {
	m := &Manager{}
	if direct {
		return m, nil
	}
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	for _, raw := range proxyURLs {
		if raw == "" {
			continue
		}
		if len(m.identities) == poolSize {
			break
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("egress: invalid proxy url %q", maskProxy(raw))
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("egress: unsupported proxy scheme %q", u.Scheme)
		}
		m.identities = append(m.identities, port.EgressIdentity{Label: maskProxy(raw), ProxyURL: raw})
	}
	m.counters = make([]uint64, len(m.identities))
	return m, nil
}

// Acquire возвращает следующий прокси или nil для прямого соединения
func (m *Manager) Acquire() *port.EgressIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.identities) == 0 {
		return nil
	}
	i := m.next
	m.next = (m.next + 1) % len(m.identities)
	m.counters[i]++
	id := m.identities[i]
	return &id
}

// Usage - счетчики выдачи по меткам (без учетных данных)
func (m *Manager) Usage() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.identities))
	for i, id := range m.identities {
		out[id.Label] = m.counters[i]
	}
	return out
}

// Size - число прокси в пуле
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.identities)
}

func maskProxy(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<invalid>"
	}
	if u.User != nil {
		return u.Scheme + "://***@" + u.Host
	}
	return u.Scheme + "://" + u.Host
}
