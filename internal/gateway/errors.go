package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrUnauthorized is returned when there is no session token, before any
	// network call, and matches 401 responses from the backend.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidResponse is returned when a backend payload fails to decode or
	// does not satisfy its DTO constraints.
	ErrInvalidResponse = errors.New("invalid backend response")

	// ErrTimeout is returned when a call exceeds its deadline.
	ErrTimeout = errors.New("backend request timed out")

	// ErrUnreachable wraps transport failures: refused connections, resets,
	// DNS errors.
	ErrUnreachable = errors.New("backend unreachable")
)

// Error is a non-2xx answer from the backend.
type Error struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func newError(code int, status string, body []byte) *Error {
	if status == "" {
		status = fmt.Sprintf("%d %s", code, http.StatusText(code))
	}
	msg := ""
	for _, key := range []string{"message", "error", "detail"} {
		if v := gjson.GetBytes(body, key); v.Exists() && v.Type == gjson.String {
			msg = v.String()
			break
		}
	}
	return &Error{StatusCode: code, Status: status, Message: msg, Body: body}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %s", e.Status)
}

// Is lets errors.Is match 401 answers against ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode
	}
	return 0
}
