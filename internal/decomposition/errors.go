package decomposition

import "fmt"

// Error is a decomposition failure carrying the operation and component it
// originated from. Precondition violations (missing profile, anisotropic
// grid steps) and upstream evaluator failures are reported through it.
type Error struct {
	// Message describes what failed.
	Message string
	// Op is the operation that failed, e.g. "Engine.Decompose".
	Op string
	// Err is the underlying cause, if any.
	Err error
}

// Error returns the string form of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newError creates an Error for the given operation.
func newError(op, format string, args ...interface{}) *Error {
	return &Error{Op: op, Message: fmt.Sprintf(format, args...)}
}

// wrapError annotates an underlying error with the failing operation.
// Returns nil when err is nil.
func wrapError(err error, op, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Message: message, Err: err}
}
