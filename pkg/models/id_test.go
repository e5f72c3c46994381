package models_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/gofrs/uuid"
	guuid "github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jongo-go/jongo/pkg/models"
)

type customID string

func TestDefaultIDGenerator(t *testing.T) {
	gen := models.NewIDGenerator()

	t.Run("no field type yields ObjectID", func(t *testing.T) {
		id, err := gen.Generate(nil)
		require.NoError(t, err)
		oid, ok := id.(primitive.ObjectID)
		require.True(t, ok)
		assert.False(t, oid.IsZero())
	})

	t.Run("ObjectID pointer field", func(t *testing.T) {
		id, err := gen.Generate(reflect.TypeOf(&primitive.ObjectID{}))
		require.NoError(t, err)
		assert.IsType(t, primitive.ObjectID{}, id)
	})

	t.Run("interface field yields ObjectID", func(t *testing.T) {
		id, err := gen.Generate(reflect.TypeOf((*any)(nil)).Elem())
		require.NoError(t, err)
		assert.IsType(t, primitive.ObjectID{}, id)
	})

	t.Run("gofrs UUID field yields v7", func(t *testing.T) {
		id, err := gen.Generate(reflect.TypeOf(uuid.UUID{}))
		require.NoError(t, err)
		u, ok := id.(uuid.UUID)
		require.True(t, ok)
		assert.Equal(t, byte(7), u.Version())
	})

	t.Run("google UUID field yields v7", func(t *testing.T) {
		id, err := gen.Generate(reflect.TypeOf(guuid.UUID{}))
		require.NoError(t, err)
		u, ok := id.(guuid.UUID)
		require.True(t, ok)
		assert.Equal(t, guuid.Version(7), u.Version())
	})

	t.Run("string field yields ULID", func(t *testing.T) {
		id, err := gen.Generate(reflect.TypeOf(""))
		require.NoError(t, err)
		s, ok := id.(string)
		require.True(t, ok)
		_, err = ulid.ParseStrict(s)
		assert.NoError(t, err)
	})

	t.Run("named string field keeps its type", func(t *testing.T) {
		id, err := gen.Generate(reflect.TypeOf(customID("")))
		require.NoError(t, err)
		assert.IsType(t, customID(""), id)
	})

	t.Run("unsupported field type", func(t *testing.T) {
		_, err := gen.Generate(reflect.TypeOf(42))
		assert.Error(t, err)
	})
}

func TestDefaultIDGeneratorULIDsAreMonotonic(t *testing.T) {
	gen := models.NewIDGenerator()

	var (
		mu  sync.Mutex
		ids = map[string]struct{}{}
		wg  sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id, err := gen.Generate(reflect.TypeOf(""))
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				ids[id.(string)] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ids, 400)
}

func TestIsZeroID(t *testing.T) {
	var nilOID *primitive.ObjectID
	tests := []struct {
		name string
		id   any
		want bool
	}{
		{"nil", nil, true},
		{"zero ObjectID", primitive.ObjectID{}, true},
		{"ObjectID", primitive.NewObjectID(), false},
		{"empty string", "", true},
		{"string", "abc", false},
		{"nil UUID", uuid.Nil, true},
		{"UUID", uuid.Must(uuid.NewV4()), false},
		{"nil google UUID", guuid.Nil, true},
		{"google UUID", guuid.New(), false},
		{"zero int is a real id", 0, false},
		{"int", 7, false},
		{"nil pointer", nilOID, true},
		{"pointer to zero ObjectID", &primitive.ObjectID{}, true},
		{"empty named string", customID(""), true},
		{"zero binary", primitive.Binary{Data: make([]byte, 16)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IsZeroID(tt.id))
		})
	}
}

func TestIsNilID(t *testing.T) {
	var nilOID *primitive.ObjectID
	var nilMap map[string]any

	assert.True(t, models.IsNilID(nil))
	assert.True(t, models.IsNilID(nilOID))
	assert.True(t, models.IsNilID(nilMap))
	assert.False(t, models.IsNilID(primitive.ObjectID{}))
	assert.False(t, models.IsNilID(0))
	assert.False(t, models.IsNilID(""))
}

func TestCanGenerate(t *testing.T) {
	assert.True(t, models.CanGenerate(nil))
	assert.True(t, models.CanGenerate(reflect.TypeOf(primitive.ObjectID{})))
	assert.True(t, models.CanGenerate(reflect.TypeOf(&primitive.ObjectID{})))
	assert.True(t, models.CanGenerate(reflect.TypeOf(uuid.UUID{})))
	assert.True(t, models.CanGenerate(reflect.TypeOf(guuid.UUID{})))
	assert.True(t, models.CanGenerate(reflect.TypeOf(customID(""))))
	assert.True(t, models.CanGenerate(reflect.TypeOf((*any)(nil)).Elem()))
	assert.False(t, models.CanGenerate(reflect.TypeOf(0)))
	assert.False(t, models.CanGenerate(reflect.TypeOf(int64(0))))
}
