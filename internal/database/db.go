package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partdev/pcpart-scraper/internal/catalog"
)

// DB stores category extraction snapshots in Postgres. Expected schema:
//
//	CREATE TABLE category_snapshots (
//	    id           UUID PRIMARY KEY,
//	    category     TEXT NOT NULL,
//	    records      JSONB NOT NULL,
//	    record_count INT NOT NULL,
//	    complete     BOOLEAN NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, url string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// SaveSnapshot inserts one category run's records as a JSONB snapshot
// row. Incomplete runs are stored too, flagged, so partial data stays
// queryable alongside the on-disk artifact.
func (db *DB) SaveSnapshot(ctx context.Context, cat catalog.Category, records []catalog.Record, complete bool) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	query := `
		INSERT INTO category_snapshots
		(id, category, records, record_count, complete, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = db.pool.Exec(ctx, query,
		uuid.New(), cat.String(), data, len(records), complete, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// LatestSnapshot returns the most recent snapshot's records for a
// category, preferring complete runs.
func (db *DB) LatestSnapshot(ctx context.Context, cat catalog.Category) ([]catalog.Record, error) {
	query := `
		SELECT records
		FROM category_snapshots
		WHERE category = $1
		ORDER BY complete DESC, created_at DESC
		LIMIT 1
	`

	var data []byte
	if err := db.pool.QueryRow(ctx, query, cat.String()).Scan(&data); err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var records []catalog.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return records, nil
}
