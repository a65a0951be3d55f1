package protocol

import "errors"

// Decode failures are classified so callers can tell a malformed frame from
// a schema gap. Every returned error wraps one of these sentinels together
// with the schema and field that failed.
var (
	ErrUnknownSchema  = errors.New("unknown schema")
	ErrMissingField   = errors.New("missing required field")
	ErrUnexpectedNull = errors.New("unexpected null")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrNoCandidate    = errors.New("no matching candidate type")
	ErrBadEnvelope    = errors.New("malformed envelope")
)
