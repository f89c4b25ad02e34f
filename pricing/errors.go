package pricing

import "errors"

// Taxonomy shared by the pricing engines. Callers match with errors.Is and keep
// the wrapped detail (field, id, code) for the response payload.
var (
	// ErrUnknownCurrency is a configuration fault (missing rate row), not a user error.
	ErrUnknownCurrency = errors.New("unknown currency")

	ErrComponentNotFound = errors.New("component not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidDiscount   = errors.New("invalid discount")
)
