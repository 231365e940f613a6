package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis pushes records as JSON onto a list for an out-of-process consumer
type Redis struct {
	client *redis.Client
	queue  string
}

// NewRedis connects to addr and verifies the connection
func NewRedis(ctx context.Context, addr string, db int, queue string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Redis{client: client, queue: queue}, nil
}

// Write appends records to the queue in order with a single RPUSH
func (r *Redis) Write(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", rec.Seq, err)
		}
		values = append(values, data)
	}
	if err := r.client.RPush(ctx, r.queue, values...).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", r.queue, err)
	}
	return nil
}

// Pop removes and returns the oldest queued record, waiting up to timeout.
// It returns false when the queue stayed empty.
func (r *Redis) Pop(ctx context.Context, timeout time.Duration) (Record, bool, error) {
	res, err := r.client.BLPop(ctx, timeout, r.queue).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("BLPop: %w", err)
	}
	if len(res) < 2 {
		return Record{}, false, nil
	}
	var rec Record
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return Record{}, false, fmt.Errorf("invalid record: %w", err)
	}
	return rec, true, nil
}

// Close releases the client
func (r *Redis) Close() error {
	return r.client.Close()
}
