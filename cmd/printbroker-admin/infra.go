package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/target/printbroker-api/internal/bootstrap"
)

var errRedisNotConfigured = errors.New("redis not configured")

func (c *commandContext) connectDB(ctx context.Context) (*sql.DB, func(), error) {
	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{DBConfig: c.Config.Postgres, Logger: c.Logger})
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	return db, func() {
		if closeErr := db.Close(); closeErr != nil {
			c.Logger.Warn("db close failed", "error", closeErr)
		}
	}, nil
}

func (c *commandContext) connectRedis(ctx context.Context) (*redis.Client, func(), error) {
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{RedisConfig: c.Config.Redis, Logger: c.Logger})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return nil, nil, errRedisNotConfigured
	}
	return client, func() {
		if closeErr := client.Close(); closeErr != nil {
			c.Logger.Warn("redis close failed", "error", closeErr)
		}
	}, nil
}
