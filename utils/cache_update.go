package utils

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"retail-admin/cache"
	"retail-admin/models"
)

const cacheTTL = 15 * time.Minute

// RedisUpdateJob periodically rewrites the role permission and product
// detail caches from Mongo so edits made outside the API are picked up.
type RedisUpdateJob struct {
	db       *mongo.Database
	interval time.Duration
	logger   *zap.Logger
}

func NewRedisUpdateJob(db *mongo.Database, interval time.Duration, logger *zap.Logger) *RedisUpdateJob {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisUpdateJob{db: db, interval: interval, logger: logger.Named("cache-job")}
}

// Start runs the job until ctx is cancelled.
func (j *RedisUpdateJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce refreshes every cache the job owns.
func (j *RedisUpdateJob) RunOnce(ctx context.Context) {
	if cache.GetRedisClient() == nil {
		return
	}
	j.updateRolePermissionsCache(ctx)
	j.updateProductsCache(ctx)
}

func (j *RedisUpdateJob) updateRolePermissionsCache(ctx context.Context) {
	cursor, err := j.db.Collection("roles").Find(ctx, bson.M{})
	if err != nil {
		j.logger.Error("fetch roles for cache update", zap.Error(err))
		return
	}
	defer cursor.Close(ctx)

	var roles []models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		j.logger.Error("decode roles for cache update", zap.Error(err))
		return
	}

	for _, role := range roles {
		codes := role.Permissions
		if codes == nil {
			codes = []string{}
		}
		key := fmt.Sprintf(cache.RolePermissionsPattern, role.ID.Hex())
		if err := cache.SetCache(ctx, key, codes, cacheTTL); err != nil {
			j.logger.Warn("update role cache", zap.String("role", role.ID.Hex()), zap.Error(err))
		}
	}
	j.logger.Debug("role permission cache refreshed", zap.Int("roles", len(roles)))
}

func (j *RedisUpdateJob) updateProductsCache(ctx context.Context) {
	cursor, err := j.db.Collection("products").Find(ctx, bson.M{})
	if err != nil {
		j.logger.Error("fetch products for cache update", zap.Error(err))
		return
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		j.logger.Error("decode products for cache update", zap.Error(err))
		return
	}

	for _, product := range products {
		key := fmt.Sprintf(cache.ProductDetailPattern, product.ID.Hex())
		if err := cache.SetCache(ctx, key, product, cacheTTL); err != nil {
			j.logger.Warn("update product cache", zap.String("product", product.ID.Hex()), zap.Error(err))
		}
	}
	j.logger.Debug("product cache refreshed", zap.Int("products", len(products)))
}
