package jongo

import (
	"context"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/driver"
	"github.com/jongo-go/jongo/pkg/mapper"
	"github.com/jongo-go/jongo/pkg/models"
)

// FindOne is a single-document query. Run it with One.
type FindOne struct {
	c          *Collection
	tmpl       string
	params     []any
	projection clause
	err        error
}

// FindOne starts a query for the first document matching the template.
func (c *Collection) FindOne(tmpl string, params ...any) FindOne {
	return FindOne{c: c, tmpl: tmpl, params: params}
}

// FindOneByID starts a query for the document with the given _id. A nil id, typed or not,
// fails when run.
func (c *Collection) FindOneByID(id any) FindOne {
	f := c.FindOne(constants.IDQuery, id)
	if models.IsNilID(id) {
		f.err = constants.ErrNilID
	}
	return f
}

func (f FindOne) Projection(tmpl string, params ...any) FindOne {
	f.projection = clause{tmpl: tmpl, params: params}
	return f
}

// One runs f and converts the match to T. It returns nil without error when nothing matched.
func One[T any](ctx context.Context, f FindOne) (out *T, err error) {
	if f.err != nil {
		return nil, f.err
	}

	c := f.c
	ctx, span := c.startSpan(ctx, "findOne", f.tmpl)
	defer func() { c.endSpan(span, "findOne", err) }()

	filter, err := c.document("findOne", f.tmpl, f.params)
	if err != nil {
		return nil, err
	}
	projection, err := c.optionalDocument("projection", f.projection.tmpl, f.projection.params)
	if err != nil {
		return nil, err
	}

	raw, err := c.driver.FindOne(ctx, filter, driver.FindOneOptions{Projection: projection})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	v, err := mapper.New[T](c.unmarshaller).Map(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
