// Package mongodriver implements driver.Driver on top of the official MongoDB Go driver.
package mongodriver

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/driver"
)

// Driver runs operations against one *mongo.Collection.
type Driver struct {
	coll *mongo.Collection
}

var _ driver.Driver = (*Driver)(nil)

func New(coll *mongo.Collection) *Driver {
	return &Driver{coll: coll}
}

// Collection returns the underlying driver collection.
func (d *Driver) Collection() *mongo.Collection {
	return d.coll
}

func (d *Driver) Name() string {
	return d.coll.Name()
}

func (d *Driver) Count(ctx context.Context, filter bson.D) (int64, error) {
	return d.coll.CountDocuments(ctx, filter)
}

func (d *Driver) Find(ctx context.Context, filter bson.D, opts driver.FindOptions) (driver.Cursor, error) {
	o := options.Find()
	if opts.Limit > 0 {
		o.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		o.SetSkip(opts.Skip)
	}
	if opts.BatchSize > 0 {
		o.SetBatchSize(opts.BatchSize)
	}
	if len(opts.Sort) > 0 {
		o.SetSort(opts.Sort)
	}
	if len(opts.Projection) > 0 {
		o.SetProjection(opts.Projection)
	}
	if len(opts.Hint) > 0 {
		o.SetHint(opts.Hint)
	}

	cur, err := d.coll.Find(ctx, filter, o)
	if err != nil {
		return nil, err
	}
	return &cursor{cur: cur}, nil
}

func (d *Driver) FindOne(ctx context.Context, filter bson.D, opts driver.FindOneOptions) (bson.Raw, error) {
	o := options.FindOne()
	if len(opts.Projection) > 0 {
		o.SetProjection(opts.Projection)
	}

	raw, err := d.coll.FindOne(ctx, filter, o).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (d *Driver) Distinct(ctx context.Context, field string, filter bson.D) ([]any, error) {
	return d.coll.Distinct(ctx, field, filter)
}

func (d *Driver) Update(ctx context.Context, filter, modifier bson.D, opts driver.UpdateOptions) (*driver.WriteResult, error) {
	coll, err := d.withConcern(opts.WriteConcern)
	if err != nil {
		return nil, err
	}

	o := options.Update().SetUpsert(opts.Upsert)
	var res *mongo.UpdateResult
	if opts.Multi {
		res, err = coll.UpdateMany(ctx, filter, modifier, o)
	} else {
		res, err = coll.UpdateOne(ctx, filter, modifier, o)
	}
	if err != nil {
		return nil, err
	}
	return fromUpdate(res), nil
}

func (d *Driver) Save(ctx context.Context, doc bson.D, wc *writeconcern.WriteConcern) (*driver.WriteResult, error) {
	coll, err := d.withConcern(wc)
	if err != nil {
		return nil, err
	}

	var id any
	for _, e := range doc {
		if e.Key == constants.IDField {
			id = e.Value
			break
		}
	}
	if id == nil {
		return nil, constants.ErrNilID
	}

	res, err := coll.ReplaceOne(ctx, bson.D{{Key: constants.IDField, Value: id}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return fromUpdate(res), nil
}

func (d *Driver) Insert(ctx context.Context, doc bson.D, wc *writeconcern.WriteConcern) (*driver.WriteResult, error) {
	coll, err := d.withConcern(wc)
	if err != nil {
		return nil, err
	}

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &driver.WriteResult{UpsertedID: res.InsertedID}, nil
}

func (d *Driver) Remove(ctx context.Context, filter bson.D, wc *writeconcern.WriteConcern) (*driver.WriteResult, error) {
	coll, err := d.withConcern(wc)
	if err != nil {
		return nil, err
	}

	res, err := coll.DeleteMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &driver.WriteResult{Removed: res.DeletedCount}, nil
}

func (d *Driver) EnsureIndex(ctx context.Context, keys bson.D) (string, error) {
	return d.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys})
}

func (d *Driver) Drop(ctx context.Context) error {
	return d.coll.Drop(ctx)
}

// withConcern returns the collection to write through. A nil wc keeps the collection's own.
func (d *Driver) withConcern(wc *writeconcern.WriteConcern) (*mongo.Collection, error) {
	if wc == nil {
		return d.coll, nil
	}
	return d.coll.Clone(options.Collection().SetWriteConcern(wc))
}

func fromUpdate(res *mongo.UpdateResult) *driver.WriteResult {
	return &driver.WriteResult{
		Matched:    res.MatchedCount,
		Modified:   res.ModifiedCount,
		Upserted:   res.UpsertedCount,
		UpsertedID: res.UpsertedID,
	}
}

type cursor struct {
	cur *mongo.Cursor
}

func (c *cursor) Next(ctx context.Context) bool {
	return c.cur.Next(ctx)
}

// Current copies the document since the driver reuses its buffer on Next.
func (c *cursor) Current() bson.Raw {
	return append(bson.Raw(nil), c.cur.Current...)
}

func (c *cursor) Err() error {
	return c.cur.Err()
}

func (c *cursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}
