package utils

import (
	"context"
	"log"
	"time"

	"casamar/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client, used for the in-flight
// transaction guard that suppresses duplicate tool-call submissions.
var CacheClient *redis.Client

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

const guardPrefix = "booking:inflight:"

// AcquireBookingGuard marks a guest's booking transaction as in flight.
// Returns false when another worker is already processing a transaction
// for the same guest.
func AcquireBookingGuard(ctx context.Context, guestID string, ttl time.Duration) (bool, error) {
	return GetCacheClient().SetNX(ctx, guardPrefix+guestID, 1, ttl).Result()
}

// ReleaseBookingGuard clears the in-flight marker for a guest.
func ReleaseBookingGuard(ctx context.Context, guestID string) {
	GetCacheClient().Del(ctx, guardPrefix+guestID)
}
