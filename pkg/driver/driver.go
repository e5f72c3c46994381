// Package driver declares the document database operations jongo delegates to.
//
// Implementations receive fully built native documents and return raw results. Errors
// are returned as the implementation produced them; callers do not wrap them.
package driver

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Driver executes operations against a single collection.
type Driver interface {
	Name() string

	Count(ctx context.Context, filter bson.D) (int64, error)
	Find(ctx context.Context, filter bson.D, opts FindOptions) (Cursor, error)
	// FindOne returns nil when no document matches.
	FindOne(ctx context.Context, filter bson.D, opts FindOneOptions) (bson.Raw, error)
	Distinct(ctx context.Context, field string, filter bson.D) ([]any, error)

	Update(ctx context.Context, filter, modifier bson.D, opts UpdateOptions) (*WriteResult, error)
	// Save replaces the document with the same _id, inserting it when absent.
	Save(ctx context.Context, doc bson.D, wc *writeconcern.WriteConcern) (*WriteResult, error)
	Insert(ctx context.Context, doc bson.D, wc *writeconcern.WriteConcern) (*WriteResult, error)
	Remove(ctx context.Context, filter bson.D, wc *writeconcern.WriteConcern) (*WriteResult, error)

	EnsureIndex(ctx context.Context, keys bson.D) (string, error)
	Drop(ctx context.Context) error
}

// Cursor walks the documents of a Find.
type Cursor interface {
	Next(ctx context.Context) bool
	Current() bson.Raw
	Err() error
	Close(ctx context.Context) error
}

type FindOptions struct {
	Limit      int64
	Skip       int64
	BatchSize  int32
	Sort       bson.D
	Projection bson.D
	Hint       bson.D
}

type FindOneOptions struct {
	Projection bson.D
}

type UpdateOptions struct {
	Multi        bool
	Upsert       bool
	WriteConcern *writeconcern.WriteConcern
}

// WriteResult summarizes a write.
type WriteResult struct {
	Matched    int64
	Modified   int64
	Upserted   int64
	Removed    int64
	UpsertedID any
}
