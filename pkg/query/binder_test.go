package query

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	guuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jongo-go/jongo/pkg/constants"
)

type status string

type userID primitive.ObjectID

type point struct {
	X int32 `bson:"x"`
	Y int32 `bson:"y"`
}

func TestRenderLiterals(t *testing.T) {
	oid, err := primitive.ObjectIDFromHex("47cc67093475061e3d95369d")
	require.NoError(t, err)
	gid := guuid.MustParse("0191e1a8-8f0a-7c3e-9b1a-2f4e5d6c7b8a")
	fid := uuid.Must(uuid.FromString("0191e1a8-8f0a-7c3e-9b1a-2f4e5d6c7b8a"))
	name := "Bob"

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"string", "Alice", `"Alice"`},
		{"string with quotes", `say "hi"`, `"say \"hi\""`},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint", uint(7), "7"},
		{"float keeps a decimal point", 3.0, "3.0"},
		{"float", 2.5, "2.5"},
		{"float32", float32(0.5), "0.5"},
		{"large float", 1e21, "1e+21"},
		{"nan", math.NaN(), `{"$numberDouble":"NaN"}`},
		{"infinity", math.Inf(1), `{"$numberDouble":"Infinity"}`},
		{"negative infinity", math.Inf(-1), `{"$numberDouble":"-Infinity"}`},
		{"object id", oid, `{"$oid":"47cc67093475061e3d95369d"}`},
		{"named object id", userID(oid), `{"$oid":"47cc67093475061e3d95369d"}`},
		{"named object id pointer", func() *userID { u := userID(oid); return &u }(), `{"$oid":"47cc67093475061e3d95369d"}`},
		{"byte array", [2]byte{'h', 'i'}, `{"$binary":{"base64":"aGk=","subType":"00"}}`},
		{"google uuid", gid, `{"$binary":{"base64":"AZHhqI8KfD6bGi9OXWx7ig==","subType":"04"}}`},
		{"gofrs uuid", fid, `{"$binary":{"base64":"AZHhqI8KfD6bGi9OXWx7ig==","subType":"04"}}`},
		{"bytes", []byte("hi"), `{"$binary":{"base64":"aGk=","subType":"00"}}`},
		{"time", time.UnixMilli(1577934245000).UTC(), `{"$date":{"$numberLong":"1577934245000"}}`},
		{"datetime", primitive.DateTime(1000), `{"$date":{"$numberLong":"1000"}}`},
		{"regex", primitive.Regex{Pattern: "^a", Options: "i"}, `{"$regularExpression":{"pattern":"^a","options":"i"}}`},
		{"timestamp", primitive.Timestamp{T: 1, I: 2}, `{"$timestamp":{"t":1,"i":2}}`},
		{"named string", status("active"), `"active"`},
		{"pointer", &name, `"Bob"`},
		{"nil pointer", (*string)(nil), "null"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"nested slice", []any{1, "x", nil}, `[1,"x",null]`},
		{"nil slice", []int(nil), "null"},
		{"document", bson.D{{Key: "a", Value: int32(1)}}, `{"a":{"$numberInt":"1"}}`},
		{"struct", point{X: 1, Y: 2}, `{"x":{"$numberInt":"1"},"y":{"$numberInt":"2"}}`},
		{"struct pointer", &point{X: 3}, `{"x":{"$numberInt":"3"},"y":{"$numberInt":"0"}}`},
	}

	r := NewRenderer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderUnsupported(t *testing.T) {
	_, err := NewRenderer(nil).Render(make(chan int))
	assert.Error(t, err)
}

func TestRendererHandlers(t *testing.T) {
	r := NewRenderer(nil).
		Register(func(v any) (string, bool, error) {
			if s, ok := v.(status); ok {
				return `"` + string(s) + `!"`, true, nil
			}
			return "", false, nil
		}).
		Register(func(v any) (string, bool, error) {
			if _, ok := v.(point); ok {
				return "", false, errors.New("points are not allowed")
			}
			return "", false, nil
		})

	got, err := r.Render(status("on"))
	require.NoError(t, err)
	assert.Equal(t, `"on!"`, got)

	got, err = r.Render([]status{"a"})
	require.NoError(t, err)
	assert.Equal(t, `["a!"]`, got)

	_, err = r.Render(point{})
	assert.ErrorContains(t, err, "points are not allowed")

	got, err = r.Render("plain")
	require.NoError(t, err)
	assert.Equal(t, `"plain"`, got)
}

func TestBind(t *testing.T) {
	tmpl := MustParse("{name:#, age:{$gt:#}, tag:'#x'}")

	got, err := tmpl.Bind([]any{"Alice", 18}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{name:"Alice", age:{$gt:18}, tag:'#x'}`, got)
}

func TestBindWithoutMarkersReturnsText(t *testing.T) {
	got, err := MustParse("{name:'Alice'}").Bind(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{name:'Alice'}", got)
}

func TestBindCountMismatch(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		params []any
	}{
		{"too few", "{a:#, b:#}", []any{1}},
		{"too many", "{a:#}", []any{1, 2}},
		{"none expected", "{}", []any{1}},
		{"none given", "{a:#}", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := MustParse(tt.text)
			_, err := tmpl.Bind(tt.params, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, constants.ErrParameterCountMismatch)

			var mismatch *ParameterCountMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tmpl.Markers(), mismatch.Markers)
			assert.Equal(t, len(tt.params), mismatch.Params)
		})
	}
}

func TestBindLeavesNoMarkers(t *testing.T) {
	params := []any{"#", "a'#'b", `"#"`, []string{"#", "##"}, bson.D{{Key: "#", Value: "#"}}}
	tmpl := MustParse("{a:#, b:#, c:#, d:#, e:#}")

	resolved, err := tmpl.Bind(params, nil)
	require.NoError(t, err)

	reparsed, err := Parse(resolved)
	require.NoError(t, err)
	assert.Zero(t, reparsed.Markers())
}
