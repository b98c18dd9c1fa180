// -----------------------------------------------------------------------------
// Redis Connection
// -----------------------------------------------------------------------------
// Redis client wrapper used by the analytics counter sink. Connection is
// verified on construction; the caller owns Close.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns settings for a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "127.0.0.1:6379",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisClient wraps redis.Client.
type RedisClient struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient connects and pings Redis.
//
// Example:
//
//	cfg := database.DefaultRedisConfig()
//	client, err := database.NewRedisClient(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		logger.Error("❌ redis connection failed", zap.String("addr", cfg.Addr), zap.Error(err))
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("✅ redis connection established", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &RedisClient{client: client, logger: logger}, nil
}

// Client returns the raw client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Close releases the connection pool.
func (r *RedisClient) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("❌ redis close failed", zap.Error(err))
		return err
	}
	r.logger.Info("redis connection closed")
	return nil
}
