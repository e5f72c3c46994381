package marshal

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// BSONCodec maps values through `bson` struct tags.
type BSONCodec struct{}

func NewBSONCodec() *BSONCodec {
	return &BSONCodec{}
}

func (c *BSONCodec) Marshal(v any) (bson.D, error) {
	switch d := v.(type) {
	case bson.D:
		return d, nil
	case bson.Raw:
		return rawToD(d)
	}

	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal %T: %w", v, err)
	}
	return rawToD(data)
}

func (c *BSONCodec) Unmarshal(doc bson.Raw, dst any) error {
	if err := bson.Unmarshal(doc, dst); err != nil {
		return newUnmarshalFailure(dst, err)
	}
	return nil
}

func (c *BSONCodec) TagKey() string {
	return "bson"
}

func rawToD(raw bson.Raw) (bson.D, error) {
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	return doc, nil
}

var _ Codec = (*BSONCodec)(nil)
