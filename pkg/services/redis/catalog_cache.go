package redisservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	catalogSearchKey = Prefix + "catalog:search:%d:%s"
)

// GetCatalogSearch returns the cached search result or nil when nothing is cached.
func (s *RedisService) GetCatalogSearch(ctx context.Context, query string, limit int) ([]byte, error) {
	key := fmt.Sprintf(catalogSearchKey, limit, query)
	val, err := s.rc.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return val, nil
}

func (s *RedisService) SetCatalogSearch(ctx context.Context, query string, limit int, data []byte, ttl time.Duration) error {
	key := fmt.Sprintf(catalogSearchKey, limit, query)
	return s.rc.Set(ctx, key, data, ttl).Err()
}
