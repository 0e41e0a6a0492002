package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

const redisPingTimeout = 2 * time.Second

// redisOptions maps the REDIS_* settings onto client options.
func (c *Config) redisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// ConnectRedis opens the shared Redis client once. It stays nil in the test
// environment and unless REDIS_ENABLED is set; sessions and rate limiting then
// fall back to their stateless behavior. A failed ping leaves the client nil.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		cfg := LoadConfig()
		if cfg.IsTest() || !cfg.RedisEnabled {
			return
		}

		rdb := redis.NewClient(cfg.redisOptions())
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
			_ = rdb.Close()
			err = fmt.Errorf("redis ping failed: %w", pingErr)
			return
		}

		redisClient = rdb
		log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("connected to redis")
	})
	return redisClient, err
}

// GetRedisClient returns the shared client, or nil when Redis is off.
func GetRedisClient() *redis.Client {
	return redisClient
}
