package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderCache remembers which reminders were already sent
type ReminderCache interface {
	// Claim returns true the first time it is called for a session and offset
	Claim(ctx context.Context, sessionID string, offsetDays int) (bool, error)
}

type reminderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReminderCache creates a new reminder cache
func NewReminderCache(client *redis.Client) ReminderCache {
	return &reminderCache{
		client: client,
		ttl:    8 * 24 * time.Hour, // outlives the largest offset
	}
}

func (c *reminderCache) Claim(ctx context.Context, sessionID string, offsetDays int) (bool, error) {
	return c.client.SetNX(ctx, fmt.Sprintf("remind:%s:%d", sessionID, offsetDays), 1, c.ttl).Result()
}
