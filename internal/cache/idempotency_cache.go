package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StoredResponse is a mutation response kept for replay
type StoredResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyCache replays responses for repeated Idempotency-Key headers
type IdempotencyCache interface {
	Get(ctx context.Context, tenantID, key string) (*StoredResponse, error)
	Put(ctx context.Context, tenantID, key string, resp *StoredResponse) error
}

type idempotencyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyCache creates a new idempotency cache
func NewIdempotencyCache(client *redis.Client) IdempotencyCache {
	return &idempotencyCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *idempotencyCache) key(tenantID, key string) string {
	return fmt.Sprintf("idem:%s:%s", tenantID, key)
}

func (c *idempotencyCache) Get(ctx context.Context, tenantID, key string) (*StoredResponse, error) {
	vals, err := c.client.HGetAll(ctx, c.key(tenantID, key)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	var status int
	if _, err := fmt.Sscan(vals["status"], &status); err != nil {
		return nil, err
	}
	return &StoredResponse{Status: status, Body: []byte(vals["body"])}, nil
}

func (c *idempotencyCache) Put(ctx context.Context, tenantID, key string, resp *StoredResponse) error {
	k := c.key(tenantID, key)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, k, "status", resp.Status, "body", resp.Body)
	pipe.Expire(ctx, k, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}
