package internal

import "errors"

// Error taxonomy shared by the services. HTTP handlers map these onto
// status codes; anything else is treated as a storage failure and is
// never exposed to the caller.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
)
