package models

import (
	"crypto/rand"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	guuid "github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	objectIDType   = reflect.TypeOf(primitive.ObjectID{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	googleUUIDType = reflect.TypeOf(guuid.UUID{})
)

// IDGenerator produces identifiers for documents saved without one.
type IDGenerator interface {
	// Generate returns a new identifier assignable to a value of type t.
	// A nil t means the document carries no typed identifier field.
	Generate(t reflect.Type) (any, error)
}

// DefaultIDGenerator picks the identifier kind from the field type:
//
//	| Field type           | Generated value        |
//	|----------------------|------------------------|
//	| none, ObjectID, any  | primitive.ObjectID     |
//	| gofrs uuid.UUID      | UUID v7                |
//	| google uuid.UUID     | UUID v7                |
//	| string               | ULID                   |
type DefaultIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewIDGenerator() *DefaultIDGenerator {
	return &DefaultIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *DefaultIDGenerator) Generate(t reflect.Type) (any, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == nil, t == objectIDType, t.Kind() == reflect.Interface:
		return primitive.NewObjectID(), nil
	case t == uuidType:
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID: %w", err)
		}
		return id, nil
	case t == googleUUIDType:
		id, err := guuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID: %w", err)
		}
		return id, nil
	case t.Kind() == reflect.String:
		id, err := g.ulid()
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(id.String()).Convert(t).Interface(), nil
	}

	return nil, fmt.Errorf("cannot generate an identifier of type %s", t)
}

func (g *DefaultIDGenerator) ulid() (ulid.ULID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return ulid.ULID{}, fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id, nil
}

// IsNilID reports whether id is nil, including a typed nil pointer, interface, map or slice.
func IsNilID(id any) bool {
	if id == nil {
		return true
	}
	rv := reflect.ValueOf(id)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// IsZeroID reports whether id is absent or an unset identifier of a kind DefaultIDGenerator
// produces: a zero ObjectID, a nil UUID or an empty string. Zero values of other types,
// such as the integer 0, are real identifiers.
func IsZeroID(id any) bool {
	if IsNilID(id) {
		return true
	}
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.IsZero()
	case uuid.UUID:
		return v == uuid.Nil
	case guuid.UUID:
		return v == guuid.Nil
	}

	rv := reflect.ValueOf(id)
	switch rv.Kind() {
	case reflect.Pointer:
		return IsZeroID(rv.Elem().Interface())
	case reflect.String:
		return rv.Len() == 0
	}
	return false
}

// CanGenerate reports whether DefaultIDGenerator produces identifiers for fields of type t.
func CanGenerate(t reflect.Type) bool {
	if t == nil {
		return true
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t == objectIDType, t == uuidType, t == googleUUIDType:
		return true
	}
	switch t.Kind() {
	case reflect.Interface, reflect.String:
		return true
	}
	return false
}

var _ IDGenerator = (*DefaultIDGenerator)(nil)
