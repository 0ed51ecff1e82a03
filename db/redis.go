// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// CacheGrant stores a grant in the read cache with the default TTL
func CacheGrant(ctx context.Context, grant *model.Grant) error {
	grantJSON, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal grant: %w", err)
	}

	key := fmt.Sprintf("grant:%s", grant.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, grantJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache grant: %w", err)
	}

	logger.Debug("Grant cached successfully", zap.String("grantID", grant.ID))
	return nil
}

// GetCachedGrant returns the cached grant or nil on a cache miss
func GetCachedGrant(ctx context.Context, grantID string) (*model.Grant, error) {
	key := fmt.Sprintf("grant:%s", grantID)
	grantJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Grant not found in cache", zap.String("grantID", grantID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get grant from cache: %w", err)
	}

	var grant model.Grant
	err = json.Unmarshal([]byte(grantJSON), &grant)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal grant: %w", err)
	}

	logger.Debug("Grant retrieved from cache", zap.String("grantID", grantID))
	return &grant, nil
}

// DeleteCachedGrant drops a grant from the read cache
func DeleteCachedGrant(ctx context.Context, grantID string) error {
	key := fmt.Sprintf("grant:%s", grantID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete grant from cache: %w", err)
	}
	logger.Debug("Grant deleted from cache", zap.String("grantID", grantID))
	return nil
}

// RateLimit implements a sliding-window rate limiter over Redis
func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
