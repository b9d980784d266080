package utils

import (
	"context"
	"log"
	"time"

	"townhall/config"

	"github.com/go-redis/redis/v8"
)

// AuthCacheClient is the dedicated client for auth-token revocation caching.
var AuthCacheClient *redis.Client

const revokedTokenPrefix = "revokedToken:"

// InitAuthCache initializes the Redis client for auth caching.
func InitAuthCache() {
	AuthCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := AuthCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Auth Cache): %v", err)
	}
}

// GetAuthCacheClient returns the Redis client for auth caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// RevokeToken records a token hash so the auth middleware rejects it until
// its natural expiry.
func RevokeToken(ctx context.Context, tokenHash string, ttl time.Duration) error {
	return GetAuthCacheClient().Set(ctx, revokedTokenPrefix+tokenHash, "1", ttl).Err()
}

// IsTokenRevoked reports whether a token hash has been revoked.
func IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := GetAuthCacheClient().Exists(ctx, revokedTokenPrefix+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
