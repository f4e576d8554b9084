// internal/sites/lock.go
package sites

import (
	"context"
	"time"

	apperrors "site-composer/internal/common/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "site:lock:"

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker serializes writes to a site across service instances.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the site lock or fails with SWITCH_IN_PROGRESS. The returned
// release func must be called once the write has finished.
func (l *Locker) Acquire(ctx context.Context, siteID string) (func(context.Context) error, error) {
	key := lockKeyPrefix + siteID
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, apperrors.NewCacheFailedError("acquire site lock", err)
	}
	if !ok {
		return nil, apperrors.NewSwitchInProgressError(siteID)
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return apperrors.NewCacheFailedError("release site lock", err)
		}
		return nil
	}, nil
}
