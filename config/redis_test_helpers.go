package config

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// SetRedisClientForTest injects a Redis client, usually one backed by redismock.
// Only tests should call this.
func SetRedisClientForTest(client *redis.Client) {
	redisClient = client
}

// ResetRedisClientForTest resets the Redis client singleton so ConnectRedis runs again.
func ResetRedisClientForTest() {
	redisClient = nil
	redisOnce = sync.Once{}
}
