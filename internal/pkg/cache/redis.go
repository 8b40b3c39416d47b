package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/homehub/panel/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", cfg.GetAddr()),
		zap.Int("db", cfg.DB),
	)

	return client, nil
}

// Close closes the Redis connection
func Close(client *redis.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	} else {
		logger.Info("Redis connection closed")
	}
}

// Presence tracks which users currently hold a websocket connection.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client, ttl: 2 * time.Minute}
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("user:online:%d", userID)
}

// Touch marks a user online, refreshing the expiry
func (p *Presence) Touch(ctx context.Context, userID int64) error {
	return p.client.Set(ctx, presenceKey(userID), time.Now().Unix(), p.ttl).Err()
}

// Clear marks a user offline
func (p *Presence) Clear(ctx context.Context, userID int64) error {
	return p.client.Del(ctx, presenceKey(userID)).Err()
}

// IsOnline checks whether a user has an active presence key
func (p *Presence) IsOnline(ctx context.Context, userID int64) (bool, error) {
	n, err := p.client.Exists(ctx, presenceKey(userID)).Result()
	return n > 0, err
}

// Keys used across the hub
const (
	KeyRateLimitUser = "ratelimit:user:%d" // ratelimit:user:{userID}
	KeyRateLimitIP   = "ratelimit:ip:%s"   // ratelimit:ip:{ip}
)
