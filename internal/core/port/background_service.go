package port

import "context"

// BackgroundServicePort - фоновый компонент приложения.
// Start не блокирует, Close ждет завершения начатой работы.
type BackgroundServicePort interface {
	Start(ctx context.Context) error
	Close() error
}
