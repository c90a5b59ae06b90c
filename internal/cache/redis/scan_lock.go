package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arblab/polykalshi/internal/domain"
)

// unlockLua deletes the lock key only when its value matches the caller's
// token, so one scanner cannot release a lock another scanner holds.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// ScanLock serializes scan passes across scanner instances sharing a Redis.
// Acquire uses SETNX with a TTL so a crashed holder cannot wedge the fleet.
type ScanLock struct {
	rdb      *redis.Client
	unlockSc *redis.Script
}

// NewScanLock creates a ScanLock backed by the given Client.
func NewScanLock(c *Client) *ScanLock {
	return &ScanLock{
		rdb:      c.rdb,
		unlockSc: redis.NewScript(unlockLua),
	}
}

func lockKey(name string) string {
	return "polykalshi:lock:" + name
}

// Acquire takes the named lock for at most ttl. On success it returns an
// unlock function that is safe to call more than once. When another instance
// holds the lock it returns domain.ErrLockHeld.
func (l *ScanLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	key := lockKey(name)

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	released := false
	unlock := func() {
		if released {
			return
		}
		released = true

		// Release with a fresh context so unlock works even after the scan
		// context is cancelled.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = l.unlockSc.Run(unlockCtx, l.rdb, []string{key}, token).Err()
	}

	return unlock, nil
}
