package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("not authenticated")
	ErrCancelled    = errors.New("request cancelled")
	ErrClosed       = errors.New("tracker closed")
)

// StatusError is reported for any non-2xx response that is not a 401 or 408.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Status, http.StatusText(e.Status))
}

// Outcome classifies how a tracked request finished.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeDecodeError
	OutcomeUnauthorized
	OutcomeCancelled
	OutcomeHTTPError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDecodeError:
		return "decode_error"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeHTTPError:
		return "http_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the terminal state of a request. Value is only meaningful when
// Outcome is OutcomeSuccess. Status is zero when no response was received.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Status  int
	Err     error
}

// Ok reports whether the request succeeded and Value holds the decoded body.
func (r Result[T]) Ok() bool {
	return r.Outcome == OutcomeSuccess
}
