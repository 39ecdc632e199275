package llm

import (
	"errors"
	"fmt"
)

// ErrUnknownVendor is returned by the registry for unregistered vendor keys.
var ErrUnknownVendor = errors.New("unknown vendor")

// ErrUnknownSize is returned by resolvers when a vendor has no model mapped
// for the requested size.
var ErrUnknownSize = errors.New("no model configured for size")

// CallError wraps a transient vendor or network level failure. Callers decide
// the retry policy; clients never retry internally.
type CallError struct {
	Vendor string
	Model  string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("vendor call failed (%s/%s): %v", e.Vendor, e.Model, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// HTTPStatus marks the error as a bad-gateway class failure for the
// server error handler.
func (e *CallError) HTTPStatus() int {
	return 502
}

// IsCallError reports whether err is (or wraps) a transient vendor failure.
func IsCallError(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}
