package jongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.opentelemetry.io/otel/trace"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/driver"
	"github.com/jongo-go/jongo/pkg/logger"
	"github.com/jongo-go/jongo/pkg/marshal"
	"github.com/jongo-go/jongo/pkg/models"
	"github.com/jongo-go/jongo/pkg/query"
)

// Collection runs templated queries against one collection.
// A Collection is safe for concurrent use.
type Collection struct {
	driver       driver.Driver
	marshaller   marshal.Marshaller
	unmarshaller marshal.Unmarshaller
	factory      *query.Factory
	logger       logger.Logger
	tracer       trace.Tracer
	ids          models.IDGenerator
}

// FromDriver creates a Collection on top of d. A nil cfg uses NewConfig.
func FromDriver(d driver.Driver, cfg *Config) (*Collection, error) {
	if d == nil {
		return nil, constants.ErrNoDriver
	}
	cfg = cfg.withDefaults()
	if cfg.Marshaller == nil {
		return nil, constants.ErrNoMarshaler
	}
	if cfg.Unmarshaller == nil {
		return nil, constants.ErrNoUnmarshaler
	}

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = query.NewRenderer(cfg.Marshaller)
	}
	factory, err := query.NewFactory(cfg.TemplateCacheSize, renderer)
	if err != nil {
		return nil, err
	}

	return &Collection{
		driver:       d,
		marshaller:   cfg.Marshaller,
		unmarshaller: cfg.Unmarshaller,
		factory:      factory,
		logger:       cfg.Logger,
		tracer:       cfg.Tracer,
		ids:          cfg.IDGenerator,
	}, nil
}

func (c *Collection) Name() string {
	return c.driver.Name()
}

// Driver returns the underlying driver for operations jongo does not cover.
func (c *Collection) Driver() driver.Driver {
	return c.driver
}

// Count returns the number of documents matching the template, or all documents for "{}".
func (c *Collection) Count(ctx context.Context, tmpl string, params ...any) (n int64, err error) {
	ctx, span := c.startSpan(ctx, "count", tmpl)
	defer func() { c.endSpan(span, "count", err) }()

	filter, err := c.document("count", tmpl, params)
	if err != nil {
		return 0, err
	}
	return c.driver.Count(ctx, filter)
}

// EnsureIndex creates the index described by keys, e.g. "{name:1}", and returns its name.
func (c *Collection) EnsureIndex(ctx context.Context, keys string, params ...any) (name string, err error) {
	ctx, span := c.startSpan(ctx, "ensureIndex", keys)
	defer func() { c.endSpan(span, "ensureIndex", err) }()

	doc, err := c.document("ensureIndex", keys, params)
	if err != nil {
		return "", err
	}
	return c.driver.EnsureIndex(ctx, doc)
}

func (c *Collection) Drop(ctx context.Context) (err error) {
	ctx, span := c.startSpan(ctx, "drop", "")
	defer func() { c.endSpan(span, "drop", err) }()

	return c.driver.Drop(ctx)
}

// Insert inserts the document the template resolves to.
func (c *Collection) Insert(ctx context.Context, tmpl string, params ...any) (*driver.WriteResult, error) {
	return c.InsertWithConcern(ctx, nil, tmpl, params...)
}

func (c *Collection) InsertWithConcern(ctx context.Context, wc *writeconcern.WriteConcern, tmpl string, params ...any) (res *driver.WriteResult, err error) {
	ctx, span := c.startSpan(ctx, "insert", tmpl)
	defer func() { c.endSpan(span, "insert", err) }()

	doc, err := c.document("insert", tmpl, params)
	if err != nil {
		return nil, err
	}
	return c.driver.Insert(ctx, doc, wc)
}

// Remove deletes every document matching the template.
func (c *Collection) Remove(ctx context.Context, tmpl string, params ...any) (*driver.WriteResult, error) {
	return c.RemoveWithConcern(ctx, nil, tmpl, params...)
}

func (c *Collection) RemoveWithConcern(ctx context.Context, wc *writeconcern.WriteConcern, tmpl string, params ...any) (res *driver.WriteResult, err error) {
	ctx, span := c.startSpan(ctx, "remove", tmpl)
	defer func() { c.endSpan(span, "remove", err) }()

	filter, err := c.document("remove", tmpl, params)
	if err != nil {
		return nil, err
	}
	return c.driver.Remove(ctx, filter, wc)
}

// RemoveByID deletes the document with the given _id.
func (c *Collection) RemoveByID(ctx context.Context, id any) (*driver.WriteResult, error) {
	if models.IsNilID(id) {
		return nil, constants.ErrNilID
	}
	return c.Remove(ctx, constants.IDQuery, id)
}

// document resolves tmpl with params and converts it to a native document.
func (c *Collection) document(op, tmpl string, params []any) (bson.D, error) {
	q, err := c.factory.CreateQuery(tmpl, params...)
	if err != nil {
		return nil, err
	}

	resolved, err := q.Resolve()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("resolved query", "collection", c.Name(), "op", op, "query", resolved)

	doc, err := query.ToDocument(resolved)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// optionalDocument is like document but returns nil for an empty template.
func (c *Collection) optionalDocument(op, tmpl string, params []any) (bson.D, error) {
	if tmpl == "" {
		return nil, nil
	}
	return c.document(op, tmpl, params)
}

func (c *Collection) String() string {
	return fmt.Sprintf("jongo.Collection(%s)", c.Name())
}
