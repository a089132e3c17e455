// internal/cache/redis_test.go
package cache

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

var _ game.Recorder = (*ActionQueue)(nil)

func TestDecodeRecord(t *testing.T) {
	id := uuid.New()
	rec, err := DecodeRecord(`{"session_id":"` + id.String() + `","action_number":3,"actor":1,"actor_name":"bob","type":"draw","payload":{"count":1},"timestamp":42}`)
	require.NoError(t, err)
	assert.Equal(t, id, rec.SessionID)
	assert.Equal(t, 3, rec.ActionNumber)
	require.NotNil(t, rec.Actor)
	assert.Equal(t, 1, *rec.Actor)
	assert.Equal(t, "draw", rec.Type)
	assert.EqualValues(t, 1, rec.Payload["count"])

	_, err = DecodeRecord("not json")
	assert.Error(t, err)
	_, err = DecodeRecord(`{"session_id":"` + id.String() + `","action_number":0}`)
	assert.Error(t, err)
}

func TestNewActionQueueDefaultsName(t *testing.T) {
	assert.Equal(t, DefaultQueueName, NewActionQueue(nil, "").Name())
	assert.Equal(t, "custom", NewActionQueue(nil, "custom").Name())
}

// TestActionQueueRoundTrip needs a real Redis; set REDIS_ADDR to run it.
func TestActionQueueRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := Connect(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	q := NewActionQueue(rdb, "munchkin_test_"+uuid.NewString())
	defer rdb.Del(context.Background(), q.Name())

	actor := 0
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Record(ctx, models.ActionRecord{
			SessionID:    uuid.New(),
			ActionNumber: i,
			Actor:        &actor,
			Type:         "ready",
			Payload:      map[string]interface{}{},
			Timestamp:    time.Now().UnixMilli(),
		}))
	}
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	for i := 1; i <= 3; i++ {
		rec, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, i, rec.ActionNumber)
	}
	rec, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
