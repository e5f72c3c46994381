// Package mapper converts raw driver results into typed values.
//
// Primitive result types are handed back exactly as the driver produced them without
// touching the Unmarshaller. Every other type is unmarshalled from its document. Iterators
// map lazily: an element is converted only when the caller pulls it.
package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jongo-go/jongo/pkg/marshal"
)

// Mapper converts driver values into T.
type Mapper[T any] struct {
	kind         Kind
	target       reflect.Type
	unmarshaller marshal.Unmarshaller
}

// New returns a Mapper for T. A nil u uses the BSON codec.
func New[T any](u marshal.Unmarshaller) *Mapper[T] {
	if u == nil {
		u = marshal.NewBSONCodec()
	}
	return &Mapper[T]{
		kind:         KindOf[T](),
		target:       reflect.TypeFor[T](),
		unmarshaller: u,
	}
}

func (m *Mapper[T]) Kind() Kind {
	return m.kind
}

// Map converts v, a raw document or a decoded driver value, into T.
func (m *Mapper[T]) Map(v any) (T, error) {
	if m.kind.Primitive() {
		return m.identity(v)
	}
	return m.unmarshal(v)
}

func (m *Mapper[T]) identity(v any) (T, error) {
	if out, ok := v.(T); ok {
		return out, nil
	}

	var zero T
	if m.kind == KindAny {
		return zero, nil
	}

	// Lossless widening from the BSON integer and date types to their Go forms.
	var converted any
	switch val := v.(type) {
	case int32:
		switch m.kind {
		case KindInt64:
			converted = int64(val)
		case KindInt:
			converted = int(val)
		}
	case int64:
		if m.kind == KindInt && int64(int(val)) == val {
			converted = int(val)
		}
	case primitive.DateTime:
		if m.kind == KindTime {
			converted = val.Time()
		}
	case time.Time:
		if m.kind == KindDateTime {
			converted = primitive.NewDateTimeFromTime(val)
		}
	}
	if out, ok := converted.(T); ok {
		return out, nil
	}

	return zero, m.failure(fmt.Errorf("driver returned %T", v))
}

func (m *Mapper[T]) unmarshal(v any) (T, error) {
	var out T

	raw, err := toRaw(v)
	if err != nil {
		return out, m.failure(err)
	}
	if err := m.unmarshaller.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (m *Mapper[T]) failure(err error) error {
	return &marshal.UnmarshalFailureError{Target: m.target, Err: err}
}

func toRaw(v any) (bson.Raw, error) {
	switch val := v.(type) {
	case nil:
		return nil, errors.New("driver returned no document")
	case bson.Raw:
		return val, nil
	case bson.RawValue:
		if val.Type != bsontype.EmbeddedDocument {
			return nil, fmt.Errorf("driver returned a %s value, not a document", val.Type)
		}
		return val.Document(), nil
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, errors.New("driver returned no document")
	}
	if k := rv.Kind(); k != reflect.Struct && k != reflect.Map && rv.Type() != reflect.TypeFor[bson.D]() {
		return nil, fmt.Errorf("driver returned %T, not a document", v)
	}

	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}
