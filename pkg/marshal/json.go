package marshal

import (
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jongo-go/jongo/pkg/constants"
)

// JSONCodec maps values through `json` struct tags by way of relaxed Extended JSON.
//
// An _id holding an ObjectID is exchanged with the application as its hex string, so types
// can declare a string ID field tagged json:"_id". Other extended values such as dates keep
// their Extended JSON wrapper form and need matching Go types.
type JSONCodec struct {
	// ObjectIDs makes Marshal send a hex string `_id` as an ObjectID.
	ObjectIDs bool
}

func NewJSONCodec() *JSONCodec {
	return &JSONCodec{ObjectIDs: true}
}

func (c *JSONCodec) Marshal(v any) (bson.D, error) {
	if d, ok := v.(bson.D); ok {
		return d, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal %T: %w", v, err)
	}

	if c.ObjectIDs {
		if data, err = wrapObjectID(data); err != nil {
			return nil, err
		}
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("unable to convert %T to a document: %w", v, err)
	}
	return doc, nil
}

func (c *JSONCodec) Unmarshal(doc bson.Raw, dst any) error {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return newUnmarshalFailure(dst, err)
	}

	if data, err = unwrapObjectID(data); err != nil {
		return newUnmarshalFailure(dst, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return newUnmarshalFailure(dst, err)
	}
	return nil
}

func (c *JSONCodec) TagKey() string {
	return "json"
}

// wrapObjectID turns `"_id":"<hex>"` into `"_id":{"$oid":"<hex>"}`.
func wrapObjectID(data []byte) ([]byte, error) {
	id, err := jsonparser.GetString(data, constants.IDField)
	if err != nil || !primitive.IsValidObjectID(id) {
		return data, nil
	}
	return jsonparser.Set(data, []byte(`{"$oid":`+strconv.Quote(id)+`}`), constants.IDField)
}

// unwrapObjectID turns `"_id":{"$oid":"<hex>"}` into `"_id":"<hex>"`.
func unwrapObjectID(data []byte) ([]byte, error) {
	id, err := jsonparser.GetString(data, constants.IDField, "$oid")
	if err != nil {
		return data, nil
	}
	return jsonparser.Set(data, []byte(strconv.Quote(id)), constants.IDField)
}

var _ Codec = (*JSONCodec)(nil)
