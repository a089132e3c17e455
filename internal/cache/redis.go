// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for session action records.
const DefaultQueueName = "munchkin_actions"

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ActionQueue is the Redis list that carries action records from the server to
// the historian. The server pushes with Record; the historian drains with Pop.
type ActionQueue struct {
	rdb  redis.Cmdable
	name string
}

// NewActionQueue wraps the list called name, or DefaultQueueName when empty.
func NewActionQueue(rdb redis.Cmdable, name string) *ActionQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &ActionQueue{rdb: rdb, name: name}
}

// Name returns the list key.
func (q *ActionQueue) Name() string { return q.name }

// Record serializes rec to JSON and pushes it onto the queue. It implements
// game.Recorder.
func (q *ActionQueue) Record(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// Pop blocks up to wait for the next record. It returns nil, nil when the wait
// runs out with the queue empty.
func (q *ActionQueue) Pop(ctx context.Context, wait time.Duration) (*models.ActionRecord, error) {
	res, err := q.rdb.BLPop(ctx, wait, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", q.name, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	rec, err := DecodeRecord(res[1])
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Len reports how many records are waiting.
func (q *ActionQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}

// DecodeRecord parses one queued payload.
func DecodeRecord(payload string) (models.ActionRecord, error) {
	var rec models.ActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return models.ActionRecord{}, fmt.Errorf("invalid action record: %w", err)
	}
	if rec.ActionNumber <= 0 {
		return models.ActionRecord{}, fmt.Errorf("invalid action record: action_number %d", rec.ActionNumber)
	}
	return rec, nil
}
