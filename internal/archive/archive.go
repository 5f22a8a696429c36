// Package archive provides a PostgreSQL-backed archive for generated
// protocols. Archiving is optional: the service runs without it when no DSN
// is configured, and a save failure never fails the generation request that
// produced the protocol.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/munkhbat-dev/protokol/internal/actions"
)

// ddlProtocols creates the archive schema. Idempotent.
const ddlProtocols = `
CREATE TABLE IF NOT EXISTS protocols (
    id          BIGSERIAL    PRIMARY KEY,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    transcript  TEXT         NOT NULL,
    protocol    TEXT         NOT NULL,
    items       JSONB        NOT NULL DEFAULT '[]',
    summary     JSONB        NOT NULL DEFAULT '{}',
    entities    TEXT[]       NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_protocols_created_at
    ON protocols (created_at);
`

// Record is one archived protocol.
type Record struct {
	ID         int64
	CreatedAt  time.Time
	Transcript string
	Protocol   string
	Items      []actions.Item
	Summary    actions.Summary
	Entities   []string
}

// Store is the PostgreSQL-backed protocol archive. All operations are safe
// for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store, establishes a connection pool to the database at
// dsn, and ensures the archive schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, ddlProtocols); err != nil {
		pool.Close()
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Save inserts a record and returns its assigned ID.
func (s *Store) Save(ctx context.Context, rec Record) (int64, error) {
	itemsJSON, err := json.Marshal(rec.Items)
	if err != nil {
		return 0, fmt.Errorf("archive: marshal items: %w", err)
	}
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return 0, fmt.Errorf("archive: marshal summary: %w", err)
	}

	const q = `
		INSERT INTO protocols (transcript, protocol, items, summary, entities)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err = s.pool.QueryRow(ctx, q,
		rec.Transcript, rec.Protocol, itemsJSON, summaryJSON, rec.Entities,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("archive: save: %w", err)
	}
	return id, nil
}

// Recent returns up to limit archived protocols, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	const q = `
		SELECT id, created_at, transcript, protocol, items, summary, entities
		FROM   protocols
		ORDER  BY created_at DESC, id DESC
		LIMIT  $1`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: recent: %w", err)
	}
	defer rows.Close()

	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			rec         Record
			itemsJSON   []byte
			summaryJSON []byte
		)
		if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.Transcript, &rec.Protocol,
			&itemsJSON, &summaryJSON, &rec.Entities); err != nil {
			return rec, err
		}
		if err := json.Unmarshal(itemsJSON, &rec.Items); err != nil {
			return rec, fmt.Errorf("decode items: %w", err)
		}
		if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
			return rec, fmt.Errorf("decode summary: %w", err)
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive: recent: %w", err)
	}
	return recs, nil
}

// Ping checks database connectivity. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the pool.
func (s *Store) Close() {
	s.pool.Close()
}
