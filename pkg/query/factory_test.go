package query

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jongo-go/jongo/pkg/constants"
)

func TestFactoryCachesTemplates(t *testing.T) {
	f, err := NewFactory(2, nil)
	require.NoError(t, err)

	a, err := f.Template("{a:#}")
	require.NoError(t, err)
	b, err := f.Template("{a:#}")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, f.Len())

	_, err = f.Template("{b:#}")
	require.NoError(t, err)
	_, err = f.Template("{c:#}")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
}

func TestFactoryDoesNotCacheMalformed(t *testing.T) {
	f, err := NewFactory(0, nil)
	require.NoError(t, err)

	_, err = f.CreateQuery("{a:'#}", 1)
	assert.ErrorIs(t, err, constants.ErrMalformedTemplate)
	assert.Zero(t, f.Len())
}

func TestFactoryCreateQuery(t *testing.T) {
	r := NewRenderer(nil)
	f, err := NewFactory(8, r)
	require.NoError(t, err)
	assert.Same(t, r, f.Renderer())

	q, err := f.CreateQuery("{name:#}", "Alice")
	require.NoError(t, err)

	resolved, err := q.Resolve()
	require.NoError(t, err)
	assert.Equal(t, `{name:"Alice"}`, resolved)
}

func TestFactoryConcurrentUse(t *testing.T) {
	f, err := NewFactory(4, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := f.CreateQuery("{n:#}", i)
			if !assert.NoError(t, err) {
				return
			}
			doc, err := q.ToDocument()
			if assert.NoError(t, err) {
				assert.Equal(t, int32(i), doc[0].Value)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, f.Len())
}
