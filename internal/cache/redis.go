package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
)

// RedisCache stores probe results as JSON in Redis so multiple control
// clients hitting the same deployment share results. Every Redis fault is
// logged and treated as a miss; the probing path never fails on cache
// unavailability.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Result cache connected to Redis: %s", addr)
	return &RedisCache{rdb: rdb}, nil
}

func resultKey(targetID string) string {
	return fmt.Sprintf("health:%s", targetID)
}

func (c *RedisCache) Get(ctx context.Context, targetID string) (models.ProbeResult, bool) {
	data, err := c.rdb.Get(ctx, resultKey(targetID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Cache read failed for %s, treating as miss: %v", targetID, err)
		}
		return models.ProbeResult{}, false
	}

	var result models.ProbeResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		log.Printf("Cache entry for %s is corrupt, treating as miss: %v", targetID, err)
		return models.ProbeResult{}, false
	}
	return result, true
}

func (c *RedisCache) Set(ctx context.Context, targetID string, result models.ProbeResult, ttl time.Duration) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("Failed to marshal result for %s: %v", targetID, err)
		return
	}

	if err := c.rdb.Set(ctx, resultKey(targetID), data, ttl).Err(); err != nil {
		log.Printf("Cache write failed for %s: %v", targetID, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, targetID string) {
	if err := c.rdb.Del(ctx, resultKey(targetID)).Err(); err != nil {
		log.Printf("Cache delete failed for %s: %v", targetID, err)
	}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
