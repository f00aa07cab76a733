// Package database owns the MongoDB connection for the storefront.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vastrahub/vastra/config"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

// Collection names. Repositories reference these constants so a rename
// happens in exactly one place.
const (
	ColProducts = "products"
	ColOrders   = "orders"
	ColUsers    = "users"
	ColAudit    = "order_audit"
)

// Connect opens the MongoDB connection and verifies it with a ping.
// Returns an error instead of exiting so the caller can shut down cleanly.
func Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	var err error
	client, err = mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		client = nil
		return fmt.Errorf("database: ping: %w", err)
	}

	db = client.Database(config.MongoDB())
	return ensureIndexes(ctx)
}

// ensureIndexes creates the indexes the query paths depend on.
func ensureIndexes(ctx context.Context) error {
	users := db.Collection(ColUsers)
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("database: users email index: %w", err)
	}

	products := db.Collection(ColProducts)
	_, err = products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("database: product indexes: %w", err)
	}

	orders := db.Collection(ColOrders)
	_, err = orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("database: orders createdAt index: %w", err)
	}

	return nil
}

// DB returns the application database handle. Connect must have run.
func DB() *mongo.Database {
	if db == nil {
		panic("database: Connect has not been called")
	}
	return db
}

// Collection returns a handle for the named collection.
func Collection(name string) *mongo.Collection {
	return DB().Collection(name)
}

// Close disconnects from MongoDB.
func Close() error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
