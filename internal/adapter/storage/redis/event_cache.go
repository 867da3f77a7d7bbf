package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventCache implements ports.EventCache using Redis SET NX. It is the
// fast path of the webhook dedup guard; the payment_events table is the
// durable one.
type EventCache struct {
	client *goredis.Client
	prefix string
}

// NewEventCache creates a new Redis-backed event cache.
func NewEventCache(client *goredis.Client) *EventCache {
	return &EventCache{
		client: client,
		prefix: "whevent:",
	}
}

// CheckAndSet atomically checks if an event key exists, sets it if not.
// Returns true if the event is new, false if already seen.
func (c *EventCache) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := c.client.SetArgs(ctx, c.prefix+key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — event was already processed
			return false, nil
		}
		return false, fmt.Errorf("redis event check: %w", err)
	}
	return result == "OK", nil
}

// Clear deletes an event key so a later redelivery is treated as fresh.
// Deleting a key that was never set is not an error.
func (c *EventCache) Clear(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis event clear: %w", err)
	}
	return nil
}
