// internal/database/store_test.go
package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/munchkin/internal/game"
	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ game.ResultStore = (*Store)(nil)

func record(session uuid.UUID, n int) models.ActionRecord {
	return models.ActionRecord{
		SessionID:    session,
		ActionNumber: n,
		Type:         "ready",
		Timestamp:    time.Now().UnixMilli(),
	}
}

func TestActionBatchUpsertsEachSessionOnce(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	batch, err := actionBatch([]models.ActionRecord{record(a, 1), record(a, 2), record(b, 1), record(a, 3)})
	require.NoError(t, err)
	// two session upserts plus four action inserts
	assert.Equal(t, 6, batch.Len())
}

// TestStoreRoundTrip needs a real Postgres; set DATABASE_URL to run it.
func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, Migrate(ctx, pool))

	st := NewStore(pool)
	id := uuid.New()
	defer pool.Exec(context.Background(), "DELETE FROM sessions WHERE id = $1", id)

	actor := 1
	recs := []models.ActionRecord{record(id, 1), record(id, 2)}
	recs[1].Actor = &actor
	recs[1].ActorName = "bob"
	recs[1].Payload = map[string]interface{}{"card": "Spiky Knees"}
	require.NoError(t, st.SaveActions(ctx, recs))
	require.NoError(t, st.SaveActions(ctx, recs), "redelivery is skipped")

	got, err := st.Actions(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Actor)
	require.NotNil(t, got[1].Actor)
	assert.Equal(t, 1, *got[1].Actor)
	assert.Equal(t, "Spiky Knees", got[1].Payload["card"])

	now := time.Now().UnixMilli()
	require.NoError(t, st.SaveResult(ctx, models.SessionResult{
		SessionID:  id,
		Name:       "table",
		Winner:     "bob",
		Actions:    2,
		Players:    []models.PlayerResult{{Name: "alice", Seat: 0, Level: 4}, {Name: "bob", Seat: 1, Level: 10}},
		StartedAt:  now - 1000,
		FinishedAt: now,
	}))

	changed, err := st.MarkAbandoned(ctx, id)
	require.NoError(t, err)
	assert.False(t, changed, "completed sessions are not abandoned")

	var wins int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM session_results WHERE session_id = $1 AND did_win", id).Scan(&wins))
	assert.Equal(t, 1, wins)
}
