package usecase

import (
	"math/rand/v2"
	"time"
)

// JitterRange - случайная пауза в диапазоне [Min; Max]
type JitterRange struct {
	Min time.Duration
	Max time.Duration
}

// Pick выбирает длительность паузы
func (j JitterRange) Pick() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + time.Duration(rand.Int64N(int64(j.Max-j.Min)+1))
}

// Jitter - паузы между единицами обхода
type Jitter struct {
	BetweenPages   JitterRange
	BetweenDetails JitterRange
	BetweenFeeds   JitterRange
}

// DefaultJitter - значения, при которых источники не начинают ограничивать запросы
func DefaultJitter() Jitter {
	return Jitter{
		BetweenPages:   JitterRange{Min: 300 * time.Millisecond, Max: 900 * time.Millisecond},
		BetweenDetails: JitterRange{Min: 20 * time.Millisecond, Max: 80 * time.Millisecond},
		BetweenFeeds:   JitterRange{Min: 2 * time.Second, Max: 5 * time.Second},
	}
}
