// Package testenv connects tests and examples to a live MongoDB server.
//
// The server is taken from the JONGO_MONGODB_URI environment variable. Tests that
// need it call Skip, so the suite still runs without a server.
package testenv

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jongo-go/jongo/pkg/constants"
)

const (
	// DefaultDatabase is used when JONGO_DATABASE is unset.
	DefaultDatabase = "jongo_test"

	connectTimeout = 10 * time.Second
)

// URI returns the configured server URI, or "" when none is set.
func URI() string {
	return os.Getenv(constants.EnvMongoDBURI)
}

// Database returns the database tests run in.
func Database() string {
	if db := os.Getenv(constants.EnvDatabase); db != "" {
		return db
	}
	return DefaultDatabase
}

// Skip skips t when no server is configured.
func Skip(t testing.TB) {
	t.Helper()
	if URI() == "" {
		t.Skipf("%s is not set", constants.EnvMongoDBURI)
	}
}

// New connects to the configured server, drops the named collections and returns the
// test database. The client is disconnected when t finishes.
func New(t testing.TB, collections ...string) *mongo.Database {
	t.Helper()
	Skip(t)

	db, err := Connect(context.Background(), URI(), Database(), collections...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.Client().Disconnect(context.Background())
	})
	return db
}

// Connect dials uri, checks the server is reachable and drops the named collections of database.
func Connect(ctx context.Context, uri, database string, collections ...string) (*mongo.Database, error) {
	if database == "" {
		return nil, fmt.Errorf("database name must be specified")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	for _, name := range collections {
		if err := db.Collection(name).Drop(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to drop collection %s: %w", name, err)
		}
	}
	return db, nil
}
