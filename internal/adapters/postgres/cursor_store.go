package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/port"
)

// CursorRepository хранит курсоры пагинации в таблице feed_cursors
type CursorRepository struct {
	db DB
}

func NewCursorRepository(db DB) (*CursorRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres cursor repository: db cannot be nil")
	}
	return &CursorRepository{db: db}, nil
}

// GetNextPage возвращает сохраненную страницу или defaultPage, если курсора нет
func (r *CursorRepository) GetNextPage(ctx context.Context, feedKey string, defaultPage int) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "CursorRepository",
		"feed_key":  feedKey,
	})

	var page int
	err := r.db.QueryRow(ctx, `SELECT next_page FROM feed_cursors WHERE feed_key = $1`, feedKey).Scan(&page)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Debug("No cursor stored, using default", port.Fields{"page": defaultPage})
			return defaultPage, nil
		}
		logger.Error("Error reading cursor", err, nil)
		return 0, fmt.Errorf("CursorRepository: error reading cursor for '%s': %w", feedKey, err)
	}
	if page < 1 {
		return defaultPage, nil
	}
	return page, nil
}

// SetNextPage сохраняет курсор (UPSERT)
func (r *CursorRepository) SetNextPage(ctx context.Context, feedKey string, page int) error {
	if page < 1 {
		return fmt.Errorf("CursorRepository: invalid page %d for '%s'", page, feedKey)
	}
	query := `
        INSERT INTO feed_cursors (feed_key, next_page, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (feed_key) DO UPDATE SET next_page = EXCLUDED.next_page, updated_at = EXCLUDED.updated_at
    `
	if _, err := r.db.Exec(ctx, query, feedKey, page); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Error saving cursor", err, port.Fields{"component": "CursorRepository", "feed_key": feedKey})
		return fmt.Errorf("CursorRepository: error saving cursor for '%s': %w", feedKey, err)
	}
	return nil
}
