package query

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jongo-go/jongo/pkg/constants"
)

// Factory creates queries, parsing each distinct template text once.
type Factory struct {
	cache    *lru.Cache[string, *Template]
	renderer *Renderer
}

// NewFactory returns a Factory caching up to size parsed templates.
// A size of zero or less uses constants.DefaultTemplateCacheSize; a nil r uses a default Renderer.
func NewFactory(size int, r *Renderer) (*Factory, error) {
	if size <= 0 {
		size = constants.DefaultTemplateCacheSize
	}
	if r == nil {
		r = NewRenderer(nil)
	}

	cache, err := lru.New[string, *Template](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	return &Factory{cache: cache, renderer: r}, nil
}

// Template returns the parsed form of text, from cache when possible.
// Malformed templates are not cached.
func (f *Factory) Template(text string) (*Template, error) {
	if t, ok := f.cache.Get(text); ok {
		return t, nil
	}

	t, err := Parse(text)
	if err != nil {
		return nil, err
	}
	f.cache.Add(text, t)
	return t, nil
}

// CreateQuery parses text and binds params to it.
func (f *Factory) CreateQuery(text string, params ...any) (*Query, error) {
	t, err := f.Template(text)
	if err != nil {
		return nil, err
	}
	return New(t, f.renderer, params...), nil
}

// Renderer returns the renderer queries from f bind with.
func (f *Factory) Renderer() *Renderer {
	return f.renderer
}

// Len returns the number of cached templates.
func (f *Factory) Len() int {
	return f.cache.Len()
}
