package port

import (
	"context"
	"time"
)

// ClockPort абстрагирует время и паузы, чтобы планировщик можно было тестировать
type ClockPort interface {
	Now() time.Time
	// Sleep возвращает ctx.Err(), если контекст отменен раньше
	Sleep(ctx context.Context, d time.Duration) error
}

// CronPort - периодические таймеры (реализуется robfig/cron)
type CronPort interface {
	AddFunc(spec string, cmd func()) error
	Start()
	Stop()
}
