package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// SessionCache keeps recently read schedule sessions in Redis
type SessionCache interface {
	Set(ctx context.Context, session *model.ScheduleSession) error
	Get(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error)
	Delete(ctx context.Context, tenantID string, ids ...string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    10 * time.Minute,
	}
}

func (c *sessionCache) key(tenantID, id string) string {
	return fmt.Sprintf("session:%s:%s", tenantID, id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.ScheduleSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.TenantID, session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.ScheduleSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, tenantID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(tenantID, id)
	}
	return c.client.Del(ctx, keys...).Err()
}
