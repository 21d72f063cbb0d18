package utils

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const AuthTokenPrefix = "authToken:"

// Cached hashes go stale on their own; rotation and sign-out delete them
// eagerly so the TTL only bounds the window after a direct DB edit.
const authTokenTTL = 15 * time.Minute

// CacheAuthTokenHash stores the student's current token hash in the auth
// cache with a TTL.
func CacheAuthTokenHash(client *redis.Client, studentID, hash string) error {
	ctx := context.Background()
	return client.Set(ctx, AuthTokenPrefix+studentID, hash, authTokenTTL).Err()
}

// GetCachedAuthTokenHash retrieves the cached token hash for a student.
// Returns redis.Nil when no hash is cached.
func GetCachedAuthTokenHash(client *redis.Client, studentID string) (string, error) {
	ctx := context.Background()
	return client.Get(ctx, AuthTokenPrefix+studentID).Result()
}

// InvalidateAuthTokenHash drops the cached hash, forcing the next request
// through the account store.
func InvalidateAuthTokenHash(client *redis.Client, studentID string) error {
	ctx := context.Background()
	return client.Del(ctx, AuthTokenPrefix+studentID).Err()
}
