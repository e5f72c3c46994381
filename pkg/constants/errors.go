package constants

import "errors"

// Errors
var (
	ErrMalformedTemplate      = errors.New("malformed query template")
	ErrParameterCountMismatch = errors.New("parameter count does not match placeholder count")
	ErrInvalidQuerySyntax     = errors.New("invalid query syntax")
	ErrUnmarshalFailure       = errors.New("unable to unmarshal document")
)

var (
	ErrNilID         = errors.New("object id must not be nil")
	ErrNoDriver      = errors.New("driver is not set")
	ErrNoMarshaler   = errors.New("marshaler is not set")
	ErrNoUnmarshaler = errors.New("unmarshaler is not set")
	ErrNilObject     = errors.New("object to save must not be nil")
)
