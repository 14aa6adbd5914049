package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	Client *mongo.Client

	ProductCollection     *mongo.Collection
	CategoryCollection    *mongo.Collection
	TransactionCollection *mongo.Collection
	EmployeeCollection    *mongo.Collection
	StoreCollection       *mongo.Collection
	CustomerCollection    *mongo.Collection
)

// Connect establishes the MongoDB connection and binds the collections.
// Call once from main before serving requests.
func Connect(ctx context.Context) error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "tamias"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	Client = client
	database := client.Database(dbName)

	ProductCollection = database.Collection("products")
	CategoryCollection = database.Collection("categories")
	TransactionCollection = database.Collection("transactions")
	EmployeeCollection = database.Collection("employees")
	StoreCollection = database.Collection("stores")
	CustomerCollection = database.Collection("customers")

	return nil
}

// Disconnect closes the MongoDB connection.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
