package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

const foodCacheTTL = 60 * time.Second

func foodCacheKey(eventId uint) string {
	return fmt.Sprintf("events:%d:food", eventId)
}

// CacheEventFood stores the serialized food list for an event. A short TTL is
// enough: reserve/cancel invalidate the key explicitly.
func CacheEventFood(ctx context.Context, eventId uint, payload string) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Set(ctx, foodCacheKey(eventId), payload, foodCacheTTL).Err(); err != nil {
		log.Printf("[redis] Failed to cache food for event %d: %s\n", eventId, err.Error())
	}
}

func GetCachedEventFood(ctx context.Context, eventId uint) (string, bool) {
	rdb := GetRedisClient()
	if rdb == nil {
		return "", false
	}
	val, err := rdb.Get(ctx, foodCacheKey(eventId)).Result()
	if err == redis.Nil {
		return "", false
	} else if err != nil {
		log.Printf("[redis] Error reading food cache for event %d: %s\n", eventId, err.Error())
		return "", false
	}
	return val, true
}

func InvalidateEventFood(ctx context.Context, eventId uint) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, foodCacheKey(eventId)).Err(); err != nil {
		log.Printf("[redis] Error invalidating food cache for event %d: %s\n", eventId, err.Error())
	}
}
