package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/attendance-tracker/pkg/config"
)

// Namespace prefixes every key written by the attendance service.
const Namespace = "attendance"

// NewRedis returns a configured Redis client.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Key joins parts under Namespace, e.g. Key("search", "ali") -> "attendance:search:ali".
func Key(parts ...string) string {
	return strings.Join(append([]string{Namespace}, parts...), ":")
}

// Pattern matches every key under Namespace.
func Pattern() string {
	return Namespace + ":*"
}
