package controller

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConfiguration is returned by GetConfig when the controller has no stored configuration
	ErrNoConfiguration = errors.New("controller has no configuration")
	// ErrUnreachable matches every transport level failure
	ErrUnreachable = errors.New("controller unreachable")
)

// StatusError is returned when the controller answers with an unexpected status
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("controller %s returned status %d", e.Endpoint, e.StatusCode)
}

// Successful reports whether the status was 2xx, i.e. accepted but not understood
func (e *StatusError) Successful() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// UnreachableError wraps a transport failure
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("controller %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnreachable) hold for every UnreachableError
func (e *UnreachableError) Is(target error) bool {
	return target == ErrUnreachable
}

// IsUnreachable reports whether err is a transport failure
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// StatusCode extracts the HTTP status from a StatusError, or 0
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
