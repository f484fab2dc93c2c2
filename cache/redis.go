package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// ErrNotInitialized is returned by every helper while Redis is not set up.
// Callers treat it like a cache miss.
var ErrNotInitialized = errors.New("cache: redis client not initialized")

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// InitRedis initializes the Redis client
func InitRedis(ctx context.Context, config RedisConfig) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Host + ":" + config.Port,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return err
	}
	redisClient = client
	return nil
}

// SetClient installs an existing client. Tests use it with a local server.
func SetClient(c *redis.Client) { redisClient = c }

// GetRedisClient returns the Redis client instance
func GetRedisClient() *redis.Client {
	return redisClient
}

// Close releases the client, if any.
func Close() error {
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}

// SetCache stores data in Redis cache
func SetCache(ctx context.Context, key string, data interface{}, expiration time.Duration) error {
	if redisClient == nil {
		return ErrNotInitialized
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, key, dataJSON, expiration).Err()
}

// GetCache retrieves data from Redis cache. A missing key returns redis.Nil.
func GetCache(ctx context.Context, key string, dest interface{}) error {
	if redisClient == nil {
		return ErrNotInitialized
	}
	val, err := redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

// DeleteCache removes data from Redis cache
func DeleteCache(ctx context.Context, keys ...string) error {
	if redisClient == nil {
		return ErrNotInitialized
	}
	return redisClient.Del(ctx, keys...).Err()
}

// DeleteByPattern deletes all keys matching a pattern
func DeleteByPattern(ctx context.Context, pattern string) error {
	if redisClient == nil {
		return ErrNotInitialized
	}
	iter := redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// IsMiss reports whether err only means the value was not cached.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil) || errors.Is(err, ErrNotInitialized)
}

const (
	// Cache key patterns
	ProductListPattern     = "products:*"
	ProductDetailPattern   = "product:%s"
	RolePermissionsPattern = "role:%s:permissions"
	UserAccessPattern      = "user:%s:access"
)
