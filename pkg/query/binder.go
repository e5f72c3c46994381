package query

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/marshal"
)

// ParameterCountMismatchError reports a binding whose parameter count differs from the marker count.
type ParameterCountMismatchError struct {
	Template string
	Markers  int
	Params   int
}

func (e *ParameterCountMismatchError) Error() string {
	return fmt.Sprintf("%s: %q has %d markers, got %d parameters",
		constants.ErrParameterCountMismatch, e.Template, e.Markers, e.Params)
}

func (e *ParameterCountMismatchError) Unwrap() error {
	return constants.ErrParameterCountMismatch
}

// Handler renders v as a query literal. It returns ok=false to let the next rule decide.
type Handler func(v any) (literal string, ok bool, err error)

// Renderer turns parameter values into query literals.
//
// Registered handlers run in registration order before the built-in rules, so applications
// can teach the binder about their own value types.
type Renderer struct {
	marshaller marshal.Marshaller

	mu       sync.RWMutex
	handlers []Handler
}

// NewRenderer returns a Renderer that renders structured values through m.
// A nil m falls back to the BSON codec.
func NewRenderer(m marshal.Marshaller) *Renderer {
	if m == nil {
		m = marshal.NewBSONCodec()
	}
	return &Renderer{marshaller: m}
}

// Register appends h to the handler chain.
func (r *Renderer) Register(h Handler) *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = append(r.handlers, h)
	return r
}

// Render returns the literal form of v.
func (r *Renderer) Render(v any) (string, error) {
	r.mu.RLock()
	handlers := r.handlers
	r.mu.RUnlock()

	for _, h := range handlers {
		lit, ok, err := h(v)
		if err != nil {
			return "", fmt.Errorf("unable to render parameter of type %T: %w", v, err)
		}
		if ok {
			return lit, nil
		}
	}

	return r.literal(v)
}

// Bind substitutes params for the markers of t, left to right.
// A nil r uses a default Renderer.
func (t *Template) Bind(params []any, r *Renderer) (string, error) {
	if len(params) != t.markers {
		return "", &ParameterCountMismatchError{Template: t.text, Markers: t.markers, Params: len(params)}
	}
	if t.markers == 0 {
		return t.text, nil
	}
	if r == nil {
		r = defaultRenderer()
	}

	var (
		sb   strings.Builder
		next int
	)
	sb.Grow(len(t.text) + 16*t.markers)
	for _, s := range t.segments {
		if s.kind == literalSegment {
			sb.WriteString(s.text)
			continue
		}

		lit, err := r.Render(params[next])
		if err != nil {
			return "", fmt.Errorf("parameter %d: %w", next, err)
		}
		sb.WriteString(lit)
		next++
	}

	return sb.String(), nil
}

var defaultRenderer = sync.OnceValue(func() *Renderer {
	return NewRenderer(nil)
})
