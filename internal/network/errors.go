package network

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoContent matches an ApplicationError built from a 204 response. List
// endpoints answer 204 when there is nothing to show for a resource, which
// this client reports as a failure rather than as an empty list.
var ErrNoContent = errors.New("no content")

// NetworkError is a fetch-layer failure: the request never produced a usable
// response (transport error, unreadable or undecodable body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ApplicationError is a well-formed failure reported by the server, either
// through a {"detail"} / {"error": {"detail"}} body or through the status code.
type ApplicationError struct {
	Op     string
	Status int
	Detail string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, e.Detail)
}

func (e *ApplicationError) Is(target error) bool {
	return target == ErrNoContent && e.Status == http.StatusNoContent
}

const networkErrorMessage = "Could not reach the server."

// Message renders err as text suitable for the status line.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		if appErr.Detail != "" {
			return appErr.Detail
		}
		return http.StatusText(appErr.Status)
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return networkErrorMessage
	}
	return err.Error()
}
