package choices

import (
	"errors"
	"net/http"
)

// ErrUnknownSource is returned when a name does not resolve to a source.
var ErrUnknownSource = errors.New("choices: unknown source")

// StatusError lets a Guard choose the HTTP status of a rejection.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.status())
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) status() int {
	if e.Code < 400 || e.Code > 599 {
		return http.StatusForbidden
	}
	return e.Code
}

func guardStatus(err error) int {
	var status StatusError
	if errors.As(err, &status) {
		return status.status()
	}
	return http.StatusForbidden
}
