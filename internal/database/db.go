// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables the server and historian write to.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'in_progress',
	winner      TEXT,
	actions     INTEGER NOT NULL DEFAULT 0,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS session_actions (
	session_id    UUID NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
	action_number INTEGER NOT NULL,
	actor         INTEGER,
	actor_name    TEXT,
	action_type   TEXT NOT NULL,
	payload       JSONB NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_id, action_number)
);

CREATE TABLE IF NOT EXISTS session_results (
	session_id UUID NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
	seat       INTEGER NOT NULL,
	name       TEXT NOT NULL,
	level      INTEGER NOT NULL,
	did_win    BOOLEAN NOT NULL,
	PRIMARY KEY (session_id, seat)
);
`

// Connect opens a pgx pool on url and pings it.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// Migrate applies Schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, Schema)
		return err
	})
}
