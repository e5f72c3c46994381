package jongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jongo-go/jongo/pkg/driver"
	"github.com/jongo-go/jongo/pkg/mapper"
)

// clause is an optional template with its parameters, such as a sort or projection.
type clause struct {
	tmpl   string
	params []any
}

// Find is a multi-document query. Its methods return modified copies, so a Find can be
// reused as a base for variations. Run it with Iter or All.
type Find struct {
	c      *Collection
	tmpl   string
	params []any

	limit      int64
	skip       int64
	batchSize  int32
	sort       clause
	projection clause
	hint       clause
}

// Find starts a query matching the template. An empty template matches every document.
func (c *Collection) Find(tmpl string, params ...any) Find {
	return Find{c: c, tmpl: tmpl, params: params}
}

func (f Find) Limit(n int64) Find {
	f.limit = n
	return f
}

func (f Find) Skip(n int64) Find {
	f.skip = n
	return f
}

func (f Find) BatchSize(n int32) Find {
	f.batchSize = n
	return f
}

// Sort orders the results, e.g. Sort("{age:-1, name:1}").
func (f Find) Sort(tmpl string, params ...any) Find {
	f.sort = clause{tmpl: tmpl, params: params}
	return f
}

// Projection restricts the returned fields, e.g. Projection("{name:1}").
func (f Find) Projection(tmpl string, params ...any) Find {
	f.projection = clause{tmpl: tmpl, params: params}
	return f
}

// Hint forces the index to use, e.g. Hint("{name:1}").
func (f Find) Hint(tmpl string, params ...any) Find {
	f.hint = clause{tmpl: tmpl, params: params}
	return f
}

func (f Find) options() (driver.FindOptions, error) {
	opts := driver.FindOptions{Limit: f.limit, Skip: f.skip, BatchSize: f.batchSize}

	for _, o := range []struct {
		op  string
		cl  clause
		dst *bson.D
	}{
		{"sort", f.sort, &opts.Sort},
		{"projection", f.projection, &opts.Projection},
		{"hint", f.hint, &opts.Hint},
	} {
		doc, err := f.c.optionalDocument(o.op, o.cl.tmpl, o.cl.params)
		if err != nil {
			return driver.FindOptions{}, err
		}
		*o.dst = doc
	}
	return opts, nil
}

// Iter runs f and returns a lazy iterator over the results converted to T.
// The caller must drain or Close the iterator to release the cursor.
func Iter[T any](ctx context.Context, f Find) (it *mapper.Iterator[T], err error) {
	c := f.c
	ctx, span := c.startSpan(ctx, "find", f.tmpl)
	defer func() { c.endSpan(span, "find", err) }()

	filter, err := c.document("find", f.tmpl, f.params)
	if err != nil {
		return nil, err
	}
	opts, err := f.options()
	if err != nil {
		return nil, err
	}

	cur, err := c.driver.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return mapper.NewIterator(mapper.FromCursor(cur), mapper.New[T](c.unmarshaller)), nil
}

// All runs f and converts every result to T. It returns an empty slice when nothing matched.
func All[T any](ctx context.Context, f Find) ([]T, error) {
	it, err := Iter[T](ctx, f)
	if err != nil {
		return nil, err
	}
	return it.All(ctx)
}
