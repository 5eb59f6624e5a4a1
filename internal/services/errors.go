package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors surfaced as request-level failures by the handlers.
var (
	// ErrNotFound means the survey identifier did not resolve. Raised for
	// update/edit/delete before authorization is evaluated.
	ErrNotFound = errors.New("happening survey doesn't exist")

	// ErrPermissionDenied means the actor failed the edit authorization
	// predicate.
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")

	// ErrNotAuthenticated means the operation needs a logged-in actor.
	ErrNotAuthenticated = errors.New("you are not logged in")

	// ErrCreateFailed is the generic creation failure; the original cause
	// is logged server-side and never reaches the client.
	ErrCreateFailed = errors.New("failed to create happening survey")

	// ErrUpdateFailed is the generic update failure.
	ErrUpdateFailed = errors.New("failed to update happening survey")
)

// ValidationError carries schema-level field errors back to the caller as
// a structured payload rather than a request-level failure.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func uint64PtrEqual(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
