package remote

import (
	"errors"
	"fmt"
)

// NotFoundError reports an absent document.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("remote: %s/%s not found", e.Collection, e.ID)
}

// NetworkError reports a transport-level or server-side failure.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote: %s failed with status %d", e.Op, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthenticationError reports rejected credentials.
type AuthenticationError struct {
	Op     string
	Status int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("remote: %s rejected with status %d", e.Op, e.Status)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsUnavailable reports whether err is a failure the sync layer should
// downgrade rather than propagate: network trouble or bad credentials.
func IsUnavailable(err error) bool {
	var network *NetworkError
	var auth *AuthenticationError
	return errors.As(err, &network) || errors.As(err, &auth)
}
