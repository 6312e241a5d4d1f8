// Package result holds the outcome type returned by user-facing actions.
// Failures are values, and callers decide how to notify the user.
package result

// Result is either a success carrying a value or a failure carrying the reason.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps v.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps the reason an action did not complete. A nil reason is
// still a failure.
func Failure[T any](reason error) Result[T] {
	if reason == nil {
		reason = errUnknown
	}
	return Result[T]{err: reason}
}

// OK reports whether the action succeeded.
func (r Result[T]) OK() bool { return r.err == nil }

// Value returns the success value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Reason returns the failure reason, or nil on success.
func (r Result[T]) Reason() error { return r.err }

// Message is the user-facing text for a failure.
func (r Result[T]) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

type unknownError struct{}

func (unknownError) Error() string { return "action failed" }

var errUnknown error = unknownError{}
