package core

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusCarrier marks an error whose reason is safe to show to chat users.
type StatusCarrier interface {
	error
	StatusReason() string
}

// StatusError is the stock StatusCarrier. Handlers return it (or wrap it) when a failure
// should be explained to the user instead of reported as a bot bug.
type StatusError struct {
	Status int
	Reason string
	Err    error
}

func NewStatusError(status int, reason string) *StatusError {
	return &StatusError{Status: status, Reason: reason}
}

func WrapStatusError(status int, reason string, err error) *StatusError {
	return &StatusError{Status: status, Reason: reason, Err: err}
}

func (e *StatusError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	case e.Reason != "":
		return e.Reason
	case e.Err != nil:
		return e.Err.Error()
	default:
		return http.StatusText(e.Status)
	}
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) StatusReason() string {
	return e.Reason
}

// IsStatusError reports whether any error in err's tree carries a user-facing reason
func IsStatusError(err error) bool {
	var carrier StatusCarrier
	return errors.As(err, &carrier)
}
