package config

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis: подключает Redis для кэша и истории чата (не обязателен)
func InitRedis() error {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}

	Redis = redis.NewClient(opts)
	return Redis.Ping(context.Background()).Err()
}
