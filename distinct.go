package jongo

import (
	"context"

	"github.com/jongo-go/jongo/pkg/mapper"
)

// Distinct returns the distinct values of key among the documents matching the template.
// Values are converted to T lazily as the iterator advances.
func Distinct[T any](ctx context.Context, c *Collection, key, tmpl string, params ...any) (it *mapper.Iterator[T], err error) {
	ctx, span := c.startSpan(ctx, "distinct", tmpl)
	defer func() { c.endSpan(span, "distinct", err) }()

	filter, err := c.document("distinct", tmpl, params)
	if err != nil {
		return nil, err
	}

	values, err := c.driver.Distinct(ctx, key, filter)
	if err != nil {
		return nil, err
	}
	return mapper.NewIterator(mapper.NewSliceSource(values), mapper.New[T](c.unmarshaller)), nil
}
