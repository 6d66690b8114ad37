package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyPublished  = errors.New("already published")
	ErrPublishInProgress = errors.New("publish already in progress")
	ErrWebsiteInactive   = errors.New("website is inactive")
	ErrAttemptsExhausted = errors.New("publish attempts exhausted")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
)

// RemoteError is the failure side of a WordPress call.
type RemoteError struct {
	// Status is the HTTP status code, zero for transport failures.
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("remote returned %d: %s", e.Status, e.Message)
}

// AuthFailure reports whether the remote rejected the credentials.
func (e *RemoteError) AuthFailure() bool {
	return e.Status == 401 || e.Status == 403
}
