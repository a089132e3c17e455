// internal/database/store.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/munchkin/internal/models"
)

// Store persists sessions, their action history, and final results.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const (
	upsertSessionQ = `
		INSERT INTO sessions (id, status, started_at)
		VALUES ($1, 'in_progress', $2)
		ON CONFLICT (id) DO NOTHING
	`
	insertActionQ = `
		INSERT INTO session_actions (
			session_id, action_number, actor, actor_name, action_type, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, action_number) DO NOTHING
	`
)

// SaveActions writes a batch of action records in one transaction. Records
// already stored are skipped, so a redelivered batch is harmless.
func (st *Store) SaveActions(ctx context.Context, recs []models.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	batch, err := actionBatch(recs)
	if err != nil {
		return err
	}
	err = pgx.BeginTxFunc(ctx, st.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("save %d actions: %w", len(recs), err)
	}
	return nil
}

// actionBatch queues one session upsert per distinct session followed by its
// action inserts.
func actionBatch(recs []models.ActionRecord) (*pgx.Batch, error) {
	b := &pgx.Batch{}
	seen := make(map[uuid.UUID]bool)
	for _, rec := range recs {
		at := time.UnixMilli(rec.Timestamp)
		if !seen[rec.SessionID] {
			seen[rec.SessionID] = true
			b.Queue(upsertSessionQ, rec.SessionID, at)
		}
		payload := rec.Payload
		if payload == nil {
			payload = map[string]interface{}{}
		}
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload of action %d: %w", rec.ActionNumber, err)
		}
		b.Queue(insertActionQ,
			rec.SessionID, rec.ActionNumber, rec.Actor, rec.ActorName, rec.Type, jsonPayload, at,
		)
	}
	return b, nil
}

// SaveResult records the outcome of a finished session. It implements
// game.ResultStore.
func (st *Store) SaveResult(ctx context.Context, res models.SessionResult) error {
	err := pgx.BeginTxFunc(ctx, st.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertSession := `
			INSERT INTO sessions (id, name, status, winner, actions, started_at, finished_at)
			VALUES ($1, $2, 'completed', $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = $2, status = 'completed', winner = $3, actions = $4,
				started_at = $5, finished_at = $6
		`
		if _, err := tx.Exec(ctx, upsertSession,
			res.SessionID, res.Name, res.Winner, res.Actions,
			time.UnixMilli(res.StartedAt), time.UnixMilli(res.FinishedAt),
		); err != nil {
			return err
		}

		for _, p := range res.Players {
			q := `
				INSERT INTO session_results (session_id, seat, name, level, did_win)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (session_id, seat)
				DO UPDATE SET name = $3, level = $4, did_win = $5
			`
			if _, err := tx.Exec(ctx, q, res.SessionID, p.Seat, p.Name, p.Level, p.Name == res.Winner); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert session or results: %w", err)
	}
	return nil
}

// MarkAbandoned closes out a session that stopped producing actions. It reports
// whether a running session was changed.
func (st *Store) MarkAbandoned(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	tag, err := st.pool.Exec(ctx, `
		UPDATE sessions
		SET status = 'abandoned', finished_at = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`, sessionID)
	if err != nil {
		return false, fmt.Errorf("mark session %s abandoned: %w", sessionID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Actions returns the stored history of a session in order.
func (st *Store) Actions(ctx context.Context, sessionID uuid.UUID) ([]models.ActionRecord, error) {
	rows, err := st.pool.Query(ctx, `
		SELECT action_number, actor, COALESCE(actor_name, ''), action_type, payload, created_at
		FROM session_actions
		WHERE session_id = $1
		ORDER BY action_number
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []models.ActionRecord
	for rows.Next() {
		rec := models.ActionRecord{SessionID: sessionID}
		var (
			payload []byte
			at      time.Time
		)
		if err := rows.Scan(&rec.ActionNumber, &rec.Actor, &rec.ActorName, &rec.Type, &payload, &at); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of action %d: %w", rec.ActionNumber, err)
		}
		rec.Timestamp = at.UnixMilli()
		out = append(out, rec)
	}
	return out, rows.Err()
}
