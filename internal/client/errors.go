package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrLoginInProgress is returned by Login while another Login runs.
	ErrLoginInProgress = errors.New("login already in progress")
	// ErrTaskNotLoaded is returned by board operations on a task the board doesn't hold.
	ErrTaskNotLoaded = errors.New("task not loaded")
)

// APIError is a non-2xx answer of the server. Message is the plain text body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d %s", e.Status, http.StatusText(e.Status))
	}

	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 answer.
func IsUnauthorized(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
