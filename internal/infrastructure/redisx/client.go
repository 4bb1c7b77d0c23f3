package redisx

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/kardex-api/pkg/config"
)

// New crea el cliente Redis usado para el pub/sub del feed en vivo.
func New(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifica conectividad (usado al arrancar).
func Ping(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}
