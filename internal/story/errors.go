package story

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork       = errors.New("remote story service unreachable")
	ErrServer        = errors.New("remote story service error")
	ErrValidation    = errors.New("invalid story")
	ErrNotSignedIn   = errors.New("not signed in")
	ErrStoryNotFound = errors.New("story not found")
)

// ServerError is a non-success answer from the remote story service.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote story service returned %d", e.Status)
	}
	return fmt.Sprintf("remote story service returned %d: %s", e.Status, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
