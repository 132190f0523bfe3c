// Package mongo stores assets and tickets in the ativos and chamados
// collections and streams their changes to live reports.
package mongo

import (
	"context"
	"fmt"

	"github.com/lorrc/asset-desk-backend/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	assetsCollection  = "ativos"
	ticketsCollection = "chamados"
)

// Connect opens a client and pings the admin database.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.URI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func Ping(ctx context.Context, client *mongo.Client) error {
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the record queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	createdDesc := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}

	if _, err := db.Collection(assetsCollection).Indexes().CreateOne(ctx, createdDesc); err != nil {
		return fmt.Errorf("failed to index %s: %w", assetsCollection, err)
	}

	_, err := db.Collection(ticketsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		createdDesc,
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", ticketsCollection, err)
	}
	return nil
}
