package query

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	guuid "github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	binaryGeneric = "00"
	binaryUUID    = "04"
)

var objectIDType = reflect.TypeFor[primitive.ObjectID]()

func (r *Renderer) literal(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		return quote(val)
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return double(float64(val), 32), nil
	case float64:
		return double(val, 64), nil
	case primitive.ObjectID:
		return `{"$oid":"` + val.Hex() + `"}`, nil
	case uuid.UUID:
		return binary(val.Bytes(), binaryUUID), nil
	case guuid.UUID:
		return binary(val[:], binaryUUID), nil
	case []byte:
		return binary(val, binaryGeneric), nil
	case time.Time:
		return date(val.UnixMilli()), nil
	case primitive.DateTime:
		return date(int64(val)), nil
	case primitive.Regex, primitive.Decimal128, primitive.Timestamp, primitive.Binary,
		primitive.MinKey, primitive.MaxKey, primitive.JavaScript, primitive.Symbol, bson.RawValue:
		return extValue(val)
	case bson.D:
		return r.document(val)
	case bson.Raw:
		return extDocument(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "null", nil
		}
		return r.Render(rv.Elem().Interface())
	case reflect.String:
		return quote(rv.String())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return double(rv.Float(), 32), nil
	case reflect.Float64:
		return double(rv.Float(), 64), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "null", nil
		}
		// Named types over ObjectID, such as type UserID primitive.ObjectID.
		if rv.Type().Name() != "" && rv.Type().ConvertibleTo(objectIDType) {
			return r.literal(rv.Convert(objectIDType).Interface())
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return binary(b, binaryGeneric), nil
		}
		return r.array(rv)
	case reflect.Map:
		if rv.IsNil() {
			return "null", nil
		}
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return "", fmt.Errorf("unsupported parameter type %T", v)
	}

	return r.document(v)
}

func (r *Renderer) array(rv reflect.Value) (string, error) {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		lit, err := r.Render(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		sb.WriteString(lit)
	}
	sb.WriteByte(']')
	return sb.String(), nil
}

// document renders v as the canonical Extended JSON of its marshalled form.
func (r *Renderer) document(v any) (string, error) {
	doc, err := r.marshaller.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("unable to marshal parameter: %w", err)
	}
	return extDocument(doc)
}

func extDocument(doc any) (string, error) {
	data, err := bson.MarshalExtJSON(doc, true, false)
	if err != nil {
		return "", fmt.Errorf("unable to render document: %w", err)
	}
	return string(data), nil
}

// extValue renders a single BSON value as canonical Extended JSON.
func extValue(v any) (string, error) {
	data, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, true, false)
	if err != nil {
		return "", fmt.Errorf("unable to render %T: %w", v, err)
	}

	value, typ, _, err := jsonparser.Get(data, "v")
	if err != nil {
		return "", fmt.Errorf("unable to render %T: %w", v, err)
	}
	if typ == jsonparser.String {
		return `"` + string(value) + `"`, nil
	}
	return string(value), nil
}

func quote(s string) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// double keeps a decimal point or exponent so the literal stays a double once parsed.
func double(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return `{"$numberDouble":"NaN"}`
	case math.IsInf(f, 1):
		return `{"$numberDouble":"Infinity"}`
	case math.IsInf(f, -1):
		return `{"$numberDouble":"-Infinity"}`
	}

	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func binary(b []byte, subType string) string {
	return `{"$binary":{"base64":"` + base64.StdEncoding.EncodeToString(b) + `","subType":"` + subType + `"}}`
}

func date(millis int64) string {
	return `{"$date":{"$numberLong":"` + strconv.FormatInt(millis, 10) + `"}}`
}
