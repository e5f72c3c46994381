package marshal

import (
	"reflect"
	"strings"

	"github.com/jongo-go/jongo/pkg/constants"
)

// IDField returns the struct field of v mapped to _id through tagKey.
// The value is settable only when v is a pointer to a struct.
func IDField(v any, tagKey string) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return findIDField(rv, tagKey)
}

func findIDField(rv reflect.Value, tagKey string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name, opts, _ := strings.Cut(f.Tag.Get(tagKey), ",")

		if f.Anonymous && f.Type.Kind() == reflect.Struct && (name == "" || strings.Contains(opts, "inline")) {
			if fv, ok := findIDField(rv.Field(i), tagKey); ok {
				return fv, true
			}
			continue
		}

		if !f.IsExported() {
			continue
		}
		if name == constants.IDField {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
