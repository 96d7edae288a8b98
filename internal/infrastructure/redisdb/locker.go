package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/go-wallet-verify/internal/pkg/token"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:"

// releaseScript deletes the lock only when the stored holder token matches,
// so a lock that expired and was re-acquired by someone else is never
// released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker provides short-lived conditional-create mutual exclusion on top of
// the shared store. The TTL is a crash-safety net, not the primary
// correctness mechanism: holders are expected to release on every exit path.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// Acquire attempts a conditional create of lock:<key> with the given TTL.
// Returns the holder token and whether the lock was obtained.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	tok, err := token.New()
	if err != nil {
		return "", false, err
	}
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, tok, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return tok, ok, nil
}

// Release removes the lock if tok still identifies the current holder.
// Releasing an already-expired or foreign lock is a no-op.
func (l *Locker) Release(ctx context.Context, key, tok string) error {
	if err := releaseScript.Run(ctx, l.client, []string{lockKeyPrefix + key}, tok).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
