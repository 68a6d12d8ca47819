// Package errors provides error wrapping that carries structured log attributes
// alongside the usual error chain. It re-exports the parts of the standard
// library errors package that the application uses so that call sites only need
// a single import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// annotatedError is an error with a message and optional [slog.Attr] annotations.
type annotatedError struct {
	msg   string
	attrs []slog.Attr
	err   error
}

// NewSentinel creates a new sentinel error that can be compared with [Is].
func NewSentinel(msg string) error {
	return &annotatedError{msg: msg, attrs: nil, err: nil}
}

// Wrap annotates err with a message and optional [slog.Attr] for structured logging.
// The annotations are surfaced by [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, attrs: attrs, err: err}
}

// DecoratePanic converts a recovered panic value into an error.
func DecoratePanic(recovered any) error {
	return &annotatedError{msg: fmt.Sprintf("panic: %v", recovered), attrs: nil, err: nil}
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// SlogError flattens the error chain into a [slog.Attr] containing the full
// message and every annotation attached with [Wrap] along the way.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}
	var annotations []any
	for _, cur := range flatten(err) {
		if annotated, ok := cur.(*annotatedError); ok {
			for _, attr := range annotated.attrs {
				annotations = append(annotations, attr)
			}
		}
	}
	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", attrs...)
}

// flatten walks the error tree in depth-first order, following both single
// wrapping and [Join]ed multi-errors.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	flattened := []error{err}
	switch unwrapped := err.(type) {
	case interface{ Unwrap() []error }:
		for _, child := range unwrapped.Unwrap() {
			flattened = append(flattened, flatten(child)...)
		}
	case interface{ Unwrap() error }:
		flattened = append(flattened, flatten(unwrapped.Unwrap())...)
	}
	return flattened
}

// New, Is, As, Unwrap, and Join delegate to the standard library.

func New(msg string) error { return errors.New(msg) }

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Unwrap(err error) error { return errors.Unwrap(err) }

func Join(errs ...error) error { return errors.Join(errs...) }
