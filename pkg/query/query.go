package query

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Query is a template paired with its bound parameters.
type Query struct {
	template *Template
	params   []any
	renderer *Renderer
}

// New pairs t with params. A nil r uses a default Renderer.
func New(t *Template, r *Renderer, params ...any) *Query {
	return &Query{template: t, params: params, renderer: r}
}

// Template returns the parsed template of q.
func (q *Query) Template() *Template {
	return q.template
}

// Params returns the bound parameters.
func (q *Query) Params() []any {
	return q.params
}

// Resolve substitutes the parameters into the template text.
func (q *Query) Resolve() (string, error) {
	return q.template.Bind(q.params, q.renderer)
}

// ToDocument resolves q and parses the result into a fresh native document.
func (q *Query) ToDocument() (bson.D, error) {
	resolved, err := q.Resolve()
	if err != nil {
		return nil, err
	}
	return ToDocument(resolved)
}

func (q *Query) String() string {
	return q.template.text
}
