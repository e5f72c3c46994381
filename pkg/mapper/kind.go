package mapper

import (
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies a result type. Primitive kinds are passed through from the driver,
// KindStructured goes through the Unmarshaller.
type Kind uint8

const (
	KindStructured Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindInt
	KindFloat64
	KindString
	KindObjectID
	KindDateTime
	KindTime
	KindDecimal128
	KindBinary
	KindRegex
	KindTimestamp
	KindRaw
	KindRawValue
	KindAny
)

var kindNames = [...]string{
	KindStructured: "structured",
	KindBool:       "bool",
	KindInt32:      "int32",
	KindInt64:      "int64",
	KindInt:        "int",
	KindFloat64:    "float64",
	KindString:     "string",
	KindObjectID:   "objectid",
	KindDateTime:   "datetime",
	KindTime:       "time",
	KindDecimal128: "decimal128",
	KindBinary:     "binary",
	KindRegex:      "regex",
	KindTimestamp:  "timestamp",
	KindRaw:        "raw",
	KindRawValue:   "rawvalue",
	KindAny:        "any",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Primitive reports whether values of kind k are returned as the driver produced them.
func (k Kind) Primitive() bool {
	return k != KindStructured
}

var primitiveKinds = map[reflect.Type]Kind{
	reflect.TypeFor[bool]():                 KindBool,
	reflect.TypeFor[int32]():                KindInt32,
	reflect.TypeFor[int64]():                KindInt64,
	reflect.TypeFor[int]():                  KindInt,
	reflect.TypeFor[float64]():              KindFloat64,
	reflect.TypeFor[string]():               KindString,
	reflect.TypeFor[primitive.ObjectID]():   KindObjectID,
	reflect.TypeFor[primitive.DateTime]():   KindDateTime,
	reflect.TypeFor[time.Time]():            KindTime,
	reflect.TypeFor[primitive.Decimal128](): KindDecimal128,
	reflect.TypeFor[primitive.Binary]():     KindBinary,
	reflect.TypeFor[primitive.Regex]():      KindRegex,
	reflect.TypeFor[primitive.Timestamp]():  KindTimestamp,
	reflect.TypeFor[bson.Raw]():             KindRaw,
	reflect.TypeFor[bson.RawValue]():        KindRawValue,
	reflect.TypeFor[any]():                  KindAny,
}

// KindOf classifies T. Types outside the primitive set, including named types built on
// primitives, are structured.
func KindOf[T any]() Kind {
	return kindOf(reflect.TypeFor[T]())
}

func kindOf(t reflect.Type) Kind {
	if k, ok := primitiveKinds[t]; ok {
		return k
	}
	return KindStructured
}
