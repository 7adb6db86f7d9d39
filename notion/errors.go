package notion

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDefer signals that a factory declines the object and the next
	// candidate in the chain should be tried. It is control flow, not a
	// failure.
	ErrDefer = errors.New("notion: defer to next implementation")

	// ErrNoImplementation reports that every factory in a chain deferred.
	ErrNoImplementation = errors.New("notion: no implementation accepted the object")

	// ErrUnknownType reports an object type with no registered chain.
	ErrUnknownType = errors.New("notion: unknown object type")
)

// resolutionError carries the kind and type name a chain walk failed on.
type resolutionError struct {
	kind     string
	typeName string
	sentinel error
}

func (e *resolutionError) Error() string {
	if e.typeName == "" {
		return fmt.Sprintf("%v: %s", e.sentinel, e.kind)
	}
	return fmt.Sprintf("%v: %s %q", e.sentinel, e.kind, e.typeName)
}

func (e *resolutionError) Unwrap() error {
	return e.sentinel
}

func noImplementationError(kind, typeName string) error {
	return &resolutionError{kind: kind, typeName: typeName, sentinel: ErrNoImplementation}
}

func unknownTypeError(kind, typeName string) error {
	return &resolutionError{kind: kind, typeName: typeName, sentinel: ErrUnknownType}
}

// isFatal reports errors that abort the whole conversion. Everything else
// degrades to a placeholder at the failing node.
func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
