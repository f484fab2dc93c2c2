package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"retail-admin/config"
)

// Collection names
const (
	UsersCollection    = "users"
	RolesCollection    = "roles"
	ProductsCollection = "products"
)

func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes handlers rely on for
// duplicate detection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string]mongo.IndexModel{
		UsersCollection:    {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		RolesCollection:    {Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		ProductsCollection: {Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
	}
	for coll, model := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index %s: %w", coll, err)
		}
	}
	return nil
}
