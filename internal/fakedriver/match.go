package fakedriver

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jongo-go/jongo/pkg/constants"
)

// Cursor iterates an in-memory result set.
type Cursor struct {
	docs   []bson.Raw
	pos    int
	closed bool
}

func (c *Cursor) Next(ctx context.Context) bool {
	if c.closed || ctx.Err() != nil || c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *Cursor) Current() bson.Raw {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return nil
	}
	return c.docs[c.pos]
}

func (c *Cursor) Err() error {
	return nil
}

func (c *Cursor) Close(context.Context) error {
	c.closed = true
	return nil
}

func matches(doc, filter bson.D) bool {
	for _, f := range filter {
		v, found := lookup(doc, f.Key)
		if cond, ok := f.Value.(bson.D); ok && isOperatorDoc(cond) {
			for _, op := range cond {
				if !matchOperator(v, found, op) {
					return false
				}
			}
			continue
		}
		if !found || !equalOrContains(v, f.Value) {
			return false
		}
	}
	return true
}

func matchOperator(v any, found bool, op bson.E) bool {
	switch op.Key {
	case "$ne":
		return !found || !equalOrContains(v, op.Value)
	case "$exists":
		want, _ := op.Value.(bool)
		return found == want
	case "$in":
		arr, _ := op.Value.(bson.A)
		for _, candidate := range arr {
			if found && equalOrContains(v, candidate) {
				return true
			}
		}
		return false
	case "$gt":
		return found && ordered(v, op.Value) && compare(v, op.Value) > 0
	case "$gte":
		return found && ordered(v, op.Value) && compare(v, op.Value) >= 0
	case "$lt":
		return found && ordered(v, op.Value) && compare(v, op.Value) < 0
	case "$lte":
		return found && ordered(v, op.Value) && compare(v, op.Value) <= 0
	}
	return false
}

// equalOrContains matches v against want, looking inside v when it is an array.
func equalOrContains(v, want any) bool {
	if equalValues(v, want) {
		return true
	}
	if arr, ok := v.(bson.A); ok {
		return containsValue(arr, want)
	}
	return false
}

func isOperatorDoc(v any) bool {
	d, ok := v.(bson.D)
	if !ok || len(d) == 0 {
		return false
	}
	for _, e := range d {
		if !strings.HasPrefix(e.Key, "$") {
			return false
		}
	}
	return true
}

func apply(doc, modifier bson.D) (bson.D, error) {
	if !isOperatorDoc(modifier) {
		out := bson.D{}
		if id, ok := lookup(doc, constants.IDField); ok {
			out = append(out, bson.E{Key: constants.IDField, Value: id})
		}
		for _, e := range modifier {
			if e.Key != constants.IDField {
				out = append(out, e)
			}
		}
		return clone(out), nil
	}

	out := clone(doc)
	for _, op := range modifier {
		fields, ok := op.Value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("fakedriver: %s expects a document", op.Key)
		}
		for _, f := range fields {
			switch op.Key {
			case "$set":
				out = set(out, f.Key, f.Value)
			case "$unset":
				out = unset(out, f.Key)
			case "$inc":
				cur, _ := lookup(out, f.Key)
				sum, err := add(cur, f.Value)
				if err != nil {
					return nil, err
				}
				out = set(out, f.Key, sum)
			default:
				return nil, fmt.Errorf("fakedriver: unsupported modifier %s", op.Key)
			}
		}
	}
	return clone(out), nil
}

func add(cur, inc any) (any, error) {
	if cur == nil {
		return inc, nil
	}
	switch c := cur.(type) {
	case int32:
		if i, ok := inc.(int32); ok {
			return c + i, nil
		}
	case int64:
		if i, ok := number(inc); ok && isInteger(inc) {
			return c + int64(i), nil
		}
	}
	a, okA := number(cur)
	b, okB := number(inc)
	if !okA || !okB {
		return nil, fmt.Errorf("fakedriver: cannot $inc %T by %T", cur, inc)
	}
	if isInteger(cur) && isInteger(inc) {
		return int64(a) + int64(b), nil
	}
	return a + b, nil
}

func lookup(doc bson.D, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	for _, e := range doc {
		if e.Key != head {
			continue
		}
		if !nested {
			return e.Value, true
		}
		sub, ok := e.Value.(bson.D)
		if !ok {
			return nil, false
		}
		return lookup(sub, rest)
	}
	return nil, false
}

func set(doc bson.D, path string, value any) bson.D {
	head, rest, nested := strings.Cut(path, ".")
	for i, e := range doc {
		if e.Key != head {
			continue
		}
		if !nested {
			doc[i].Value = value
			return doc
		}
		sub, _ := e.Value.(bson.D)
		doc[i].Value = set(sub, rest, value)
		return doc
	}
	if nested {
		return append(doc, bson.E{Key: head, Value: set(bson.D{}, rest, value)})
	}
	return append(doc, bson.E{Key: head, Value: value})
}

func unset(doc bson.D, path string) bson.D {
	head, rest, nested := strings.Cut(path, ".")
	for i, e := range doc {
		if e.Key != head {
			continue
		}
		if !nested {
			return append(doc[:i:i], doc[i+1:]...)
		}
		if sub, ok := e.Value.(bson.D); ok {
			doc[i].Value = unset(sub, rest)
		}
		return doc
	}
	return doc
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int32, int64:
		return true
	}
	return false
}

func ordered(a, b any) bool {
	_, numA := number(a)
	_, numB := number(b)
	if numA || numB {
		return numA && numB
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

func compare(a, b any) int {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(x[:], y[:])
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return compare(int64(x), int64(y))
		}
	}
	return 0
}

func equalValues(a, b any) bool {
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}

func equalDocs(a, b bson.D) bool {
	ra, errA := bson.Marshal(a)
	rb, errB := bson.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}

func containsValue(values []any, v any) bool {
	for _, existing := range values {
		if equalValues(existing, v) {
			return true
		}
	}
	return false
}

// clone deep copies doc through its BSON encoding, normalizing Go values to BSON types.
func clone(doc bson.D) bson.D {
	data, err := bson.Marshal(doc)
	if err != nil {
		return append(bson.D(nil), doc...)
	}
	var out bson.D
	if err := bson.Unmarshal(data, &out); err != nil {
		return append(bson.D(nil), doc...)
	}
	return out
}
