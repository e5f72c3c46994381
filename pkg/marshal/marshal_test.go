package marshal_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/marshal"
)

type friend struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	Age     int32              `bson:"age"`
	Address *address           `bson:"address,omitempty"`
}

type address struct {
	City string `bson:"city"`
}

type jsonFriend struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestBSONCodecMarshal(t *testing.T) {
	codec := marshal.NewBSONCodec()
	id := primitive.NewObjectID()

	doc, err := codec.Marshal(&friend{ID: id, Name: "John", Age: 38, Address: &address{City: "Paris"}})
	require.NoError(t, err)

	assert.Equal(t, bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "John"},
		{Key: "age", Value: int32(38)},
		{Key: "address", Value: bson.D{{Key: "city", Value: "Paris"}}},
	}, doc)
}

func TestBSONCodecMarshalPassesDocumentsThrough(t *testing.T) {
	codec := marshal.NewBSONCodec()
	in := bson.D{{Key: "a", Value: 1}}

	doc, err := codec.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, in, doc)

	raw, err := bson.Marshal(in)
	require.NoError(t, err)
	doc, err = codec.Marshal(bson.Raw(raw))
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "a", Value: int32(1)}}, doc)
}

func TestBSONCodecMarshalRejectsScalars(t *testing.T) {
	_, err := marshal.NewBSONCodec().Marshal("not a document")
	assert.Error(t, err)
}

func TestBSONCodecUnmarshal(t *testing.T) {
	codec := marshal.NewBSONCodec()
	id := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: id}, {Key: "name", Value: "Peter"}, {Key: "age", Value: int32(22)}})
	require.NoError(t, err)

	var f friend
	require.NoError(t, codec.Unmarshal(raw, &f))
	assert.Equal(t, friend{ID: id, Name: "Peter", Age: 22}, f)
}

func TestBSONCodecUnmarshalFailure(t *testing.T) {
	codec := marshal.NewBSONCodec()
	raw, err := bson.Marshal(bson.D{{Key: "age", Value: "not a number"}})
	require.NoError(t, err)

	var f friend
	err = codec.Unmarshal(raw, &f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrUnmarshalFailure))

	var failure *marshal.UnmarshalFailureError
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "friend", failure.Target.Name())
}

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := marshal.NewJSONCodec()
	id := primitive.NewObjectID()

	doc, err := codec.Marshal(jsonFriend{ID: id.Hex(), Name: "Robert", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Robert"},
		{Key: "age", Value: int32(40)},
	}, doc)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var out jsonFriend
	require.NoError(t, codec.Unmarshal(raw, &out))
	assert.Equal(t, jsonFriend{ID: id.Hex(), Name: "Robert", Age: 40}, out)
}

func TestJSONCodecKeepsPlainStringIDs(t *testing.T) {
	codec := marshal.NewJSONCodec()

	doc, err := codec.Marshal(jsonFriend{ID: "robert", Name: "Robert"})
	require.NoError(t, err)
	assert.Equal(t, "robert", doc[0].Value)

	codec.ObjectIDs = false
	hex := primitive.NewObjectID().Hex()
	doc, err = codec.Marshal(jsonFriend{ID: hex})
	require.NoError(t, err)
	assert.Equal(t, hex, doc[0].Value)
}

func TestJSONCodecUnmarshalFailure(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "age", Value: "forty"}})
	require.NoError(t, err)

	var out jsonFriend
	err = marshal.NewJSONCodec().Unmarshal(raw, &out)
	assert.ErrorIs(t, err, constants.ErrUnmarshalFailure)
}

func TestTagKey(t *testing.T) {
	assert.Equal(t, "bson", marshal.TagKey(marshal.NewBSONCodec()))
	assert.Equal(t, "json", marshal.TagKey(marshal.NewJSONCodec()))
	assert.Equal(t, "bson", marshal.TagKey(struct{}{}))
}

type Base struct {
	ID string `bson:"_id"`
}

type embedded struct {
	Base `bson:",inline"`
	Name string `bson:"name"`
}

func TestIDField(t *testing.T) {
	t.Run("tagged field on pointer is settable", func(t *testing.T) {
		f := &friend{}
		field, ok := marshal.IDField(f, "bson")
		require.True(t, ok)
		require.True(t, field.CanSet())
		field.Set(reflect.ValueOf(primitive.NewObjectID()))
		assert.False(t, f.ID.IsZero())
	})

	t.Run("value is found but not settable", func(t *testing.T) {
		field, ok := marshal.IDField(friend{}, "bson")
		require.True(t, ok)
		assert.False(t, field.CanSet())
	})

	t.Run("inline embedded struct", func(t *testing.T) {
		e := &embedded{}
		field, ok := marshal.IDField(e, "bson")
		require.True(t, ok)
		field.SetString("abc")
		assert.Equal(t, "abc", e.ID)
	})

	t.Run("json tag key", func(t *testing.T) {
		_, ok := marshal.IDField(&jsonFriend{}, "json")
		assert.True(t, ok)
		_, ok = marshal.IDField(&jsonFriend{}, "bson")
		assert.False(t, ok)
	})

	t.Run("non struct values", func(t *testing.T) {
		_, ok := marshal.IDField(bson.M{"_id": 1}, "bson")
		assert.False(t, ok)
		var nilFriend *friend
		_, ok = marshal.IDField(nilFriend, "bson")
		assert.False(t, ok)
	})
}
