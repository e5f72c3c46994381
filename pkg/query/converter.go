package query

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jongo-go/jongo/internal/shell"
	"github.com/jongo-go/jongo/pkg/constants"
)

// InvalidQuerySyntaxError reports resolved query text that is not a valid document.
type InvalidQuerySyntaxError struct {
	Query string
	Err   error
}

func (e *InvalidQuerySyntaxError) Error() string {
	return fmt.Sprintf("%s %q: %v", constants.ErrInvalidQuerySyntax, e.Query, e.Err)
}

func (e *InvalidQuerySyntaxError) Unwrap() []error {
	return []error{constants.ErrInvalidQuerySyntax, e.Err}
}

// ToDocument parses resolved query text into a native document.
// Field order is preserved. Shell syntax such as unquoted keys is accepted.
func ToDocument(resolved string) (bson.D, error) {
	normalized, err := shell.Normalize(resolved)
	if err != nil {
		return nil, &InvalidQuerySyntaxError{Query: resolved, Err: err}
	}

	doc := bson.D{}
	if err := bson.UnmarshalExtJSON([]byte(normalized), false, &doc); err != nil {
		return nil, &InvalidQuerySyntaxError{Query: resolved, Err: err}
	}
	return doc, nil
}
