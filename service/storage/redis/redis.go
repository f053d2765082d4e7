package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisOnce sync.Once
	redisMgr  *RedisManager
)

type RedisManager struct {
	client *redis.Client
}

// Config initializes Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// InitRedis initializes the singleton Redis manager.
func InitRedis(c Config) error {
	var initErr error
	redisOnce.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
			PoolSize: c.PoolSize,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			initErr = err
			return
		}

		redisMgr = &RedisManager{client: rdb}
	})
	return initErr
}

// GetRedis returns the Redis client.
func GetRedis() *redis.Client {
	if redisMgr == nil {
		panic("Redis not initialized, call InitRedis first")
	}
	return redisMgr.client
}

// CloseRedis closes the connection.
func CloseRedis() error {
	if redisMgr != nil && redisMgr.client != nil {
		return redisMgr.client.Close()
	}
	return nil
}
