package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("remote store unavailable")
	// ErrMalformedResponse matches every *SchemaError.
	ErrMalformedResponse = errors.New("malformed remote store response")
)

// NetworkError reports a transport failure or a non-2xx status.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// SchemaError reports a response body that could not be decoded or a record
// that violates the wire schema. Index is the position of the offending
// record in a list response, or -1.
type SchemaError struct {
	Op     string
	Index  int
	Field  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Field != "" && e.Index >= 0:
		return fmt.Sprintf("remote %s: record %d: field %q %s", e.Op, e.Index, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("remote %s: field %q %s", e.Op, e.Field, e.Reason)
	default:
		return fmt.Sprintf("remote %s: %s", e.Op, e.Reason)
	}
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrMalformedResponse }
