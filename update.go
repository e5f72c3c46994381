package jongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jongo-go/jongo/pkg/driver"
)

// Update is an update of the documents matching a query, executed by With.
// By default only the first matching document is updated and nothing is inserted.
type Update struct {
	c       *Collection
	tmpl    string
	params  []any
	multi   bool
	upsert  bool
	concern *writeconcern.WriteConcern
}

// UpdateQuery starts an update of the documents matching the template.
func (c *Collection) UpdateQuery(tmpl string, params ...any) Update {
	return Update{c: c, tmpl: tmpl, params: params}
}

// Multi updates every matching document.
func (u Update) Multi() Update {
	u.multi = true
	return u
}

// Upsert inserts a document built from the query and modifier when nothing matches.
func (u Update) Upsert() Update {
	u.upsert = true
	return u
}

// Concern overrides the collection's write concern for this update.
func (u Update) Concern(wc *writeconcern.WriteConcern) Update {
	u.concern = wc
	return u
}

// With applies the modifier template, e.g. "{$set:{name:#}}".
func (u Update) With(ctx context.Context, modifier string, params ...any) (res *driver.WriteResult, err error) {
	c := u.c
	ctx, span := c.startSpan(ctx, "update", u.tmpl)
	defer func() { c.endSpan(span, "update", err) }()

	filter, err := c.document("update", u.tmpl, u.params)
	if err != nil {
		return nil, err
	}
	mod, err := c.document("modifier", modifier, params)
	if err != nil {
		return nil, err
	}

	return c.driver.Update(ctx, filter, mod, driver.UpdateOptions{
		Multi:        u.multi,
		Upsert:       u.upsert,
		WriteConcern: u.concern,
	})
}

// Update applies modifier to every document matching filter.
func (c *Collection) Update(ctx context.Context, filter, modifier string) (*driver.WriteResult, error) {
	return c.UpdateQuery(filter).Multi().With(ctx, modifier)
}

func (c *Collection) UpdateWithConcern(ctx context.Context, wc *writeconcern.WriteConcern, filter, modifier string) (*driver.WriteResult, error) {
	return c.UpdateQuery(filter).Multi().Concern(wc).With(ctx, modifier)
}

// Upsert applies modifier to the first document matching filter, inserting one when none matches.
func (c *Collection) Upsert(ctx context.Context, filter, modifier string) (*driver.WriteResult, error) {
	return c.UpdateQuery(filter).Upsert().With(ctx, modifier)
}

func (c *Collection) UpsertWithConcern(ctx context.Context, wc *writeconcern.WriteConcern, filter, modifier string) (*driver.WriteResult, error) {
	return c.UpdateQuery(filter).Upsert().Concern(wc).With(ctx, modifier)
}
