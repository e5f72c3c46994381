package jongo

import (
	"context"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/marshal"
	"github.com/jongo-go/jongo/pkg/models"
)

// Save inserts obj, or replaces the stored document with the same _id.
//
// When obj has no _id, or an unset ObjectID, UUID or string one, a new identifier is
// generated from the type of its _id field and written back into obj if obj is a pointer.
// Any other _id, including the integer 0, is saved as is. The identifier is returned.
func (c *Collection) Save(ctx context.Context, obj any) (any, error) {
	return c.SaveWithConcern(ctx, nil, obj)
}

func (c *Collection) SaveWithConcern(ctx context.Context, wc *writeconcern.WriteConcern, obj any) (id any, err error) {
	ctx, span := c.startSpan(ctx, "save", "")
	defer func() { c.endSpan(span, "save", err) }()

	if models.IsNilID(obj) {
		return nil, constants.ErrNilObject
	}

	doc, err := c.marshaller.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal %T: %w", obj, err)
	}

	idx := indexOf(doc, constants.IDField)
	if !c.needsID(obj, doc, idx) {
		id = doc[idx].Value
	} else {
		if id, err = c.assignID(obj); err != nil {
			return nil, err
		}
		if idx >= 0 {
			doc[idx].Value = id
		} else {
			doc = append(bson.D{{Key: constants.IDField, Value: id}}, doc...)
		}
	}

	c.logger.Debug("saving document", "collection", c.Name(), "id", id)
	if _, err := c.driver.Save(ctx, doc, wc); err != nil {
		return nil, err
	}
	return id, nil
}

// needsID reports whether obj has to be given a generated identifier before saving.
// A present _id of a type the generator cannot produce, such as the integer 0, is kept.
func (c *Collection) needsID(obj any, doc bson.D, idx int) bool {
	if idx < 0 {
		return true
	}
	if field, found := marshal.IDField(obj, marshal.TagKey(c.marshaller)); found {
		return field.IsZero() && models.CanGenerate(field.Type())
	}
	return models.IsZeroID(doc[idx].Value)
}

// assignID generates an identifier suited to obj's _id field and stores it there when possible.
func (c *Collection) assignID(obj any) (any, error) {
	field, found := marshal.IDField(obj, marshal.TagKey(c.marshaller))

	var t reflect.Type
	if found {
		t = field.Type()
	}
	id, err := c.ids.Generate(t)
	if err != nil {
		return nil, err
	}

	if found && field.CanSet() {
		v := reflect.ValueOf(id)
		if field.Kind() == reflect.Pointer {
			p := reflect.New(field.Type().Elem())
			p.Elem().Set(v)
			v = p
		}
		if v.Type().AssignableTo(field.Type()) {
			field.Set(v)
		}
	}
	return id, nil
}

func indexOf(doc bson.D, key string) int {
	for i, e := range doc {
		if e.Key == key {
			return i
		}
	}
	return -1
}
