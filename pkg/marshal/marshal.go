// Package marshal converts application values to and from native documents.
//
// A Marshaller turns a Go value into a bson.D, an Unmarshaller fills a Go value from a bson.Raw.
// Two codecs are provided: BSONCodec uses `bson` struct tags and the driver's codec registry,
// JSONCodec uses `json` struct tags for types shared with JSON APIs.
package marshal

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jongo-go/jongo/pkg/constants"
)

// Marshaller converts an application object into a native document.
type Marshaller interface {
	Marshal(v any) (bson.D, error)
}

// Unmarshaller constructs an application object from a native document.
type Unmarshaller interface {
	Unmarshal(doc bson.Raw, dst any) error
}

// Codec is both a Marshaller and an Unmarshaller.
type Codec interface {
	Marshaller
	Unmarshaller
}

// TagKeyer is implemented by codecs that map struct fields through a tag other than `bson`.
type TagKeyer interface {
	TagKey() string
}

// UnmarshalFailureError reports a document that cannot be converted into the requested type.
type UnmarshalFailureError struct {
	Target reflect.Type
	Err    error
}

func (e *UnmarshalFailureError) Error() string {
	return fmt.Sprintf("unable to unmarshal document into %s: %v", e.Target, e.Err)
}

func (e *UnmarshalFailureError) Unwrap() []error {
	return []error{constants.ErrUnmarshalFailure, e.Err}
}

func newUnmarshalFailure(dst any, err error) *UnmarshalFailureError {
	t := reflect.TypeOf(dst)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return &UnmarshalFailureError{Target: t, Err: err}
}

// TagKey returns the struct tag the codec maps fields through.
func TagKey(c any) string {
	if k, ok := c.(TagKeyer); ok {
		return k.TagKey()
	}
	return "bson"
}
