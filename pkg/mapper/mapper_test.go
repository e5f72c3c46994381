package mapper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/mapper"
	"github.com/jongo-go/jongo/pkg/marshal"
)

type friend struct {
	Name string `bson:"name"`
	Age  int32  `bson:"age"`
}

type countingUnmarshaller struct {
	calls int
	codec marshal.Unmarshaller
}

func (c *countingUnmarshaller) Unmarshal(doc bson.Raw, dst any) error {
	c.calls++
	return c.codec.Unmarshal(doc, dst)
}

func newCounting() *countingUnmarshaller {
	return &countingUnmarshaller{codec: marshal.NewBSONCodec()}
}

func raw(t *testing.T, d bson.D) bson.Raw {
	t.Helper()
	data, err := bson.Marshal(d)
	require.NoError(t, err)
	return data
}

func TestKindOf(t *testing.T) {
	type named string

	assert.Equal(t, mapper.KindBool, mapper.KindOf[bool]())
	assert.Equal(t, mapper.KindInt32, mapper.KindOf[int32]())
	assert.Equal(t, mapper.KindInt64, mapper.KindOf[int64]())
	assert.Equal(t, mapper.KindInt, mapper.KindOf[int]())
	assert.Equal(t, mapper.KindFloat64, mapper.KindOf[float64]())
	assert.Equal(t, mapper.KindString, mapper.KindOf[string]())
	assert.Equal(t, mapper.KindObjectID, mapper.KindOf[primitive.ObjectID]())
	assert.Equal(t, mapper.KindDateTime, mapper.KindOf[primitive.DateTime]())
	assert.Equal(t, mapper.KindTime, mapper.KindOf[time.Time]())
	assert.Equal(t, mapper.KindDecimal128, mapper.KindOf[primitive.Decimal128]())
	assert.Equal(t, mapper.KindBinary, mapper.KindOf[primitive.Binary]())
	assert.Equal(t, mapper.KindRegex, mapper.KindOf[primitive.Regex]())
	assert.Equal(t, mapper.KindTimestamp, mapper.KindOf[primitive.Timestamp]())
	assert.Equal(t, mapper.KindRaw, mapper.KindOf[bson.Raw]())
	assert.Equal(t, mapper.KindRawValue, mapper.KindOf[bson.RawValue]())
	assert.Equal(t, mapper.KindAny, mapper.KindOf[any]())

	assert.Equal(t, mapper.KindStructured, mapper.KindOf[friend]())
	assert.Equal(t, mapper.KindStructured, mapper.KindOf[*friend]())
	assert.Equal(t, mapper.KindStructured, mapper.KindOf[bson.M]())
	assert.Equal(t, mapper.KindStructured, mapper.KindOf[bson.D]())
	assert.Equal(t, mapper.KindStructured, mapper.KindOf[named]())

	assert.True(t, mapper.KindString.Primitive())
	assert.False(t, mapper.KindStructured.Primitive())
	assert.Equal(t, "objectid", mapper.KindObjectID.String())
	assert.Equal(t, "unknown", mapper.Kind(200).String())
}

func TestMapIdentity(t *testing.T) {
	u := newCounting()
	oid := primitive.NewObjectID()
	doc := raw(t, bson.D{{Key: "name", Value: "Ann"}})

	s, err := mapper.New[string](u).Map("Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", s)

	id, err := mapper.New[primitive.ObjectID](u).Map(oid)
	require.NoError(t, err)
	assert.Equal(t, oid, id)

	r, err := mapper.New[bson.Raw](u).Map(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, r)

	a, err := mapper.New[any](u).Map(int32(4))
	require.NoError(t, err)
	assert.Equal(t, int32(4), a)

	a, err = mapper.New[any](u).Map(nil)
	require.NoError(t, err)
	assert.Nil(t, a)

	assert.Zero(t, u.calls)
}

func TestMapWidening(t *testing.T) {
	n, err := mapper.New[int](nil).Map(int32(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	l, err := mapper.New[int64](nil).Map(int32(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), l)

	when := time.UnixMilli(1700000000000).UTC()
	tm, err := mapper.New[time.Time](nil).Map(primitive.NewDateTimeFromTime(when))
	require.NoError(t, err)
	assert.True(t, when.Equal(tm))
}

func TestMapIdentityMismatch(t *testing.T) {
	_, err := mapper.New[string](nil).Map(int32(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrUnmarshalFailure)

	var failure *marshal.UnmarshalFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "string", failure.Target.String())

	_, err = mapper.New[int32](nil).Map(int64(1))
	assert.ErrorIs(t, err, constants.ErrUnmarshalFailure)
}

func TestMapStructured(t *testing.T) {
	u := newCounting()
	m := mapper.New[friend](u)

	f, err := m.Map(raw(t, bson.D{{Key: "name", Value: "Ann"}, {Key: "age", Value: int32(30)}}))
	require.NoError(t, err)
	assert.Equal(t, friend{Name: "Ann", Age: 30}, f)

	f, err = m.Map(bson.D{{Key: "name", Value: "Bob"}})
	require.NoError(t, err)
	assert.Equal(t, friend{Name: "Bob"}, f)

	f, err = m.Map(bson.M{"age": int32(3)})
	require.NoError(t, err)
	assert.Equal(t, friend{Age: 3}, f)

	assert.Equal(t, 3, u.calls)
}

func TestMapStructuredPointer(t *testing.T) {
	f, err := mapper.New[*friend](nil).Map(raw(t, bson.D{{Key: "name", Value: "Ann"}}))
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "Ann", f.Name)
}

func TestMapStructuredRejectsScalars(t *testing.T) {
	u := newCounting()
	m := mapper.New[friend](u)

	for _, v := range []any{"Ann", int32(1), nil, (*friend)(nil), (*bson.D)(nil)} {
		_, err := m.Map(v)
		assert.ErrorIs(t, err, constants.ErrUnmarshalFailure)
	}
	assert.Zero(t, u.calls)
}

func TestMapStructuredUnmarshalFailure(t *testing.T) {
	_, err := mapper.New[friend](nil).Map(raw(t, bson.D{{Key: "age", Value: "old"}}))
	assert.ErrorIs(t, err, constants.ErrUnmarshalFailure)
}

type closeRecorder struct {
	*mapper.SliceSource
	closed int
	err    error
}

func (c *closeRecorder) Close(ctx context.Context) error {
	c.closed++
	_ = c.SliceSource.Close(ctx)
	return c.err
}

func TestIteratorIsLazy(t *testing.T) {
	u := newCounting()
	src := &closeRecorder{SliceSource: mapper.NewSliceSource([]any{
		raw(t, bson.D{{Key: "name", Value: "a"}}),
		raw(t, bson.D{{Key: "name", Value: "b"}}),
		raw(t, bson.D{{Key: "name", Value: "c"}}),
	})}
	it := mapper.NewIterator(src, mapper.New[friend](u))
	ctx := context.Background()

	assert.Zero(t, u.calls)
	require.True(t, it.Next(ctx))
	assert.Equal(t, "a", it.Value().Name)
	assert.Equal(t, 1, u.calls)

	require.NoError(t, it.Close(ctx))
	assert.False(t, it.Next(ctx))
	assert.Equal(t, 1, u.calls)
	assert.Equal(t, 1, src.closed)
	require.NoError(t, it.Close(ctx))
	assert.Equal(t, 1, src.closed)
}

func TestIteratorClosesOnExhaustion(t *testing.T) {
	src := &closeRecorder{SliceSource: mapper.NewSliceSource([]any{"x", "y"})}
	it := mapper.NewIterator(src, mapper.New[string](nil))

	values, err := it.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, values)
	assert.Equal(t, 1, src.closed)
}

func TestIteratorEmpty(t *testing.T) {
	it := mapper.NewIterator(mapper.NewSliceSource(nil), mapper.New[friend](nil))

	values, err := it.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, values)
	assert.Empty(t, values)
}

func TestIteratorStopsOnMappingError(t *testing.T) {
	src := &closeRecorder{SliceSource: mapper.NewSliceSource([]any{"x", int32(1), "z"})}
	it := mapper.NewIterator(src, mapper.New[string](nil))

	values, err := it.All(context.Background())
	assert.ErrorIs(t, err, constants.ErrUnmarshalFailure)
	assert.Equal(t, []string{"x"}, values)
	assert.Equal(t, 1, src.closed)
}

func TestIteratorReportsCloseError(t *testing.T) {
	boom := errors.New("boom")
	src := &closeRecorder{SliceSource: mapper.NewSliceSource([]any{"x"}), err: boom}
	it := mapper.NewIterator(src, mapper.New[string](nil))

	_, err := it.All(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestIteratorSeq(t *testing.T) {
	u := newCounting()
	src := &closeRecorder{SliceSource: mapper.NewSliceSource([]any{
		bson.D{{Key: "name", Value: "a"}},
		bson.D{{Key: "name", Value: "b"}},
		bson.D{{Key: "name", Value: "c"}},
	})}
	it := mapper.NewIterator(src, mapper.New[friend](u))

	var names []string
	for f, err := range it.Seq(context.Background()) {
		require.NoError(t, err)
		names = append(names, f.Name)
		if f.Name == "b" {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, 2, u.calls)
	assert.Equal(t, 1, src.closed)
}

func TestIteratorSeqYieldsError(t *testing.T) {
	it := mapper.NewIterator(mapper.NewSliceSource([]any{"ok", 1.5}), mapper.New[string](nil))

	var errs []error
	for _, err := range it.Seq(context.Background()) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], constants.ErrUnmarshalFailure)
}

func TestSliceSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := mapper.NewSliceSource([]any{1})
	assert.False(t, src.Next(ctx))
	assert.Nil(t, src.Current())
	assert.ErrorIs(t, src.Err(), context.Canceled)
}

func TestIteratorReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &closeRecorder{SliceSource: mapper.NewSliceSource([]any{"a", "b", "c"})}
	it := mapper.NewIterator(src, mapper.New[string](nil))

	require.True(t, it.Next(ctx))
	assert.Equal(t, "a", it.Value())

	cancel()
	values, err := it.All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, it.Err(), context.Canceled)
	assert.Empty(t, values)
	assert.Equal(t, 1, src.closed)
}
