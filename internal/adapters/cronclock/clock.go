package cronclock

import (
	"context"
	"time"
)

// Clock - настоящее время для планировщика
type Clock struct{}

func (Clock) Now() time.Time { return time.Now() }

// Sleep прерывается отменой контекста
func (Clock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
