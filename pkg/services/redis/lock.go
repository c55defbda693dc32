package redisservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	uploadLockKey = Prefix + "uploadLock:%s:%s"
)

// unlockScript is a Lua script for atomic check-and-delete.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

// LockBookUpload attempts to acquire the lock for storing fileName for userId.
// Returns:
// - acquired (bool): true if the lock was acquired.
// - lockValue (string): A unique value if acquired, to be used for safe unlocking. Empty if not acquired.
// - err (error): For Redis communication errors.
func (s *RedisService) LockBookUpload(ctx context.Context, userId, fileName string, ttl time.Duration) (acquired bool, lockValue string, err error) {
	key := fmt.Sprintf(uploadLockKey, userId, fileName)
	val := uuid.New().String()

	ok, err := s.rc.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis SetNX error for key %s: %w", key, err)
	}
	if !ok {
		return false, "", nil
	}

	return true, val, nil
}

// UnlockBookUpload safely releases a lock using the lockValue.
func (s *RedisService) UnlockBookUpload(ctx context.Context, userId, fileName, lockValue string) error {
	key := fmt.Sprintf(uploadLockKey, userId, fileName)
	if lockValue == "" {
		return nil
	}

	deleted, err := s.unlockScriptExec.Run(ctx, s.rc, []string{key}, lockValue).Int64()
	if errors.Is(err, redis.Nil) {
		// expired or already released
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis unlock script error on key %s: %w", key, err)
	}

	if deleted == 0 {
		s.logger.WithField("key", key).Warnln("upload lock was already taken over or expired")
	}
	return nil
}
