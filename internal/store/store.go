// Package store is the optional Postgres archive. The in-memory session
// store stays authoritative for per-turn serialization; this archive exists
// for ops visibility and post-hoc analysis of baited conversations.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS lure_sessions (
			id               text PRIMARY KEY,
			turns            int NOT NULL,
			is_scam          boolean NOT NULL,
			confidence       double precision NOT NULL,
			scam_type        text NOT NULL,
			decided_by       text NOT NULL,
			intelligence     jsonb NOT NULL,
			first_message_at timestamptz,
			last_message_at  timestamptz,
			reports_sent     int NOT NULL DEFAULT 0,
			updated_at       timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
