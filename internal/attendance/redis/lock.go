package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lockPrefix = "checkin_lock:"

// Lock serializes check-in attempts per user id across service instances.
// The database's conditional update stays authoritative; the lock only keeps
// two racing scans from both reaching it.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	return &Lock{Client: client, TTL: ttl}
}

// Acquire takes the per-user lock. The returned token must be passed back to
// Release so one holder cannot drop another's lock.
func (l *Lock) Acquire(userID string) (bool, string, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(context.Background(), lockPrefix+userID, token, l.TTL).Result()
	if err != nil {
		return false, "", err
	}
	return ok, token, nil
}

func (l *Lock) Release(userID, token string) error {
	ctx := context.Background()
	key := lockPrefix + userID

	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // expired on its own
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
