package port

import "context"

// CursorStorePort хранит курсоры пагинации по ключу фида
type CursorStorePort interface {
	GetNextPage(ctx context.Context, feedKey string, defaultPage int) (int, error)
	SetNextPage(ctx context.Context, feedKey string, page int) error
}
