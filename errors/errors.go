package errors

import goerrors "errors"

// WrappedError decorates a DiskoError kind with a message and, optionally, an
// underlying cause. It satisfies errors.Is against both the kind it was built
// from and, when present, the wrapped cause.
type WrappedError struct {
	kind    DiskoError
	message string
	cause   error
}

func (e *WrappedError) Error() string { return e.message }

// Unwrap exposes the underlying cause, if any, to errors.Is/errors.As chains.
func (e *WrappedError) Unwrap() error { return e.cause }

// Is reports whether target is the DiskoError kind this error was built from.
func (e *WrappedError) Is(target error) bool {
	var kind DiskoError
	if goerrors.As(target, &kind) {
		return kind == e.kind
	}
	return false
}

// WithMessage appends additional context to an already-wrapped error,
// preserving its kind and cause.
func (e *WrappedError) WithMessage(message string) *WrappedError {
	return &WrappedError{kind: e.kind, message: e.message + ": " + message, cause: e.cause}
}
