package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSlotBusy is returned when another request holds the instructor's day
var ErrSlotBusy = errors.New("instructor schedule is being modified, try again")

// SlotLock serializes conflict-scan-then-write for one instructor on one day
type SlotLock interface {
	Acquire(ctx context.Context, tenantID, instructorID, day string) (release func(), err error)
}

// release only if we still own the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type slotLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotLock creates a Redis-backed slot lock; ttl bounds a crashed holder
func NewSlotLock(client *redis.Client, ttl time.Duration) SlotLock {
	return &slotLock{client: client, ttl: ttl}
}

func (l *slotLock) key(tenantID, instructorID, day string) string {
	return fmt.Sprintf("lock:slot:%s:%s:%s", tenantID, instructorID, day)
}

func (l *slotLock) Acquire(ctx context.Context, tenantID, instructorID, day string) (func(), error) {
	key := l.key(tenantID, instructorID, day)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotBusy
	}

	return func() {
		// detached so a cancelled request still releases its lock
		releaseScript.Run(context.Background(), l.client, []string{key}, token)
	}, nil
}
