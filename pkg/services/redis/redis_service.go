package redisservice

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	Prefix = "bookmate:"
)

type RedisService struct {
	rc               *redis.Client
	unlockScriptExec *redis.Script
	logger           *logrus.Entry
}

func New(rc *redis.Client, logger *logrus.Logger) *RedisService {
	return &RedisService{
		rc:               rc,
		unlockScriptExec: redis.NewScript(unlockScript),
		logger:           logger.WithField("service", "redis"),
	}
}
