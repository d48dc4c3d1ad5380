package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB - подмножество *pgxpool.Pool, которое используют репозитории
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS feed_cursors (
    feed_key   VARCHAR(255) PRIMARY KEY,
    next_page  INTEGER      NOT NULL CHECK (next_page >= 1),
    updated_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
    url                   TEXT PRIMARY KEY,
    source                VARCHAR(32)  NOT NULL,
    external_id           VARCHAR(64)  NOT NULL,
    feed_key              VARCHAR(255) NOT NULL,
    title                 TEXT         NOT NULL DEFAULT '',
    price                 INTEGER      NOT NULL,
    area_m2               DOUBLE PRECISION,
    eur_per_m2            INTEGER,
    location              TEXT         NOT NULL DEFAULT '',
    postal_code           VARCHAR(8)   NOT NULL DEFAULT '',
    description           TEXT         NOT NULL DEFAULT '',
    images                TEXT[]       NOT NULL DEFAULT '{}',
    phone                 VARCHAR(32),
    district_code         SMALLINT,
    district_name         VARCHAR(64),
    latitude              DOUBLE PRECISION,
    longitude             DOUBLE PRECISION,
    geohash               VARCHAR(12)  NOT NULL DEFAULT '',
    category              VARCHAR(16)  NOT NULL,
    region                VARCHAR(32)  NOT NULL,
    classification_stage  SMALLINT     NOT NULL,
    classification_reason TEXT         NOT NULL,
    published_at          TIMESTAMPTZ,
    last_changed_at       TIMESTAMPTZ,
    first_seen_at         TIMESTAMPTZ  NOT NULL,
    last_seen_at          TIMESTAMPTZ  NOT NULL,
    last_change_label     VARCHAR(64)  NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_listings_feed_key ON listings(feed_key);
CREATE INDEX IF NOT EXISTS idx_listings_geohash ON listings(geohash);
CREATE INDEX IF NOT EXISTS idx_listings_last_seen_at ON listings(last_seen_at DESC);
`

// Migrate создает таблицы сервиса, если их еще нет
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}
