// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds. Every domain error wraps one of these so callers
// can classify failures with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrBatchTooLarge   = errors.New("batch exceeds maximum size")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Storage errors
	ErrTransactionFailed = errors.New("transaction failed")
	ErrStorageConflict   = errors.New("storage conflict")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError ties a failure to the domain and operation it came from.
type DomainError struct {
	Domain  string // e.g., "child", "progress", "achievement"
	Op      string // Operation that failed, e.g., "Create", "Submit"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error renders "domain.op: message", appending the cause when set.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap exposes the wrapped cause.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches against both the kind and the wrapped cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError builds a DomainError without an underlying cause.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError attaches entity and operation context to an error.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Child domain errors
var (
	ErrChildNotFound    = NewDomainError("child", "Find", ErrNotFound, "child not found")
	ErrChildExists      = NewDomainError("child", "Create", ErrAlreadyExists, "child already exists")
	ErrChildDeleted     = NewDomainError("child", "CheckStatus", ErrInvalidState, "child profile is deleted")
	ErrChildNotOwned    = NewDomainError("child", "Authorize", ErrForbidden, "child does not belong to this parent")
	ErrInvalidChildName = NewDomainError("child", "Validate", ErrInvalidInput, "child name must be 1-50 chars")
	ErrInvalidChildAge  = NewDomainError("child", "Validate", ErrValueOutOfRange, "child age must be between 3 and 12")
	ErrInvalidAvatar    = NewDomainError("child", "Validate", ErrInvalidInput, "unknown avatar token")
	ErrNegativeXPAmount = NewDomainError("child", "AwardXP", ErrNegativeValue, "xp amount cannot be negative")
	ErrInvalidXPTotal   = NewDomainError("child", "Validate", ErrNegativeValue, "total xp cannot be negative")
)

// Progress domain errors
var (
	ErrAttemptNotFound   = NewDomainError("progress", "Find", ErrNotFound, "attempt not found")
	ErrDuplicateAttempt  = NewDomainError("progress", "Submit", ErrAlreadyProcessed, "attempt with this device id already recorded")
	ErrInvalidAccuracy   = NewDomainError("progress", "Validate", ErrValueOutOfRange, "accuracy must be within [0, 1]")
	ErrInvalidWordID     = NewDomainError("progress", "Validate", ErrInvalidID, "invalid word id")
	ErrInvalidDeviceID   = NewDomainError("progress", "Validate", ErrInvalidInput, "device attempt id must be 8-100 chars")
	ErrChildMismatch     = NewDomainError("progress", "Sync", ErrInvalidInput, "attempt childId does not match batch childId")
	ErrSyncBatchTooLarge = NewDomainError("progress", "Sync", ErrBatchTooLarge, "sync batch is limited to 100 attempts")
	ErrMasteryNotFound   = NewDomainError("progress", "FindMastery", ErrNotFound, "mastery record not found")
)

// Achievement domain errors
var (
	ErrAchievementNotFound = NewDomainError("achievement", "Find", ErrNotFound, "achievement not found in catalog")
	ErrAlreadyEarned       = NewDomainError("achievement", "Award", ErrAlreadyExists, "achievement already earned")
)

// Content domain errors
var (
	ErrSurahNotFound = NewDomainError("content", "Find", ErrNotFound, "surah not found")
	ErrWordNotFound  = NewDomainError("content", "Find", ErrNotFound, "word not found")
)

// Identity domain errors
var (
	ErrUnauthenticated   = NewDomainError("identity", "Resolve", ErrUnauthorized, "no authenticated user")
	ErrParentNotFound    = NewDomainError("identity", "Find", ErrNotFound, "parent not found")
	ErrParentExists      = NewDomainError("identity", "Create", ErrAlreadyExists, "parent already registered")
	ErrConsentRequired   = NewDomainError("identity", "Onboard", ErrInvalidInput, "parental consent is required")
	ErrInvalidParentName = NewDomainError("identity", "Validate", ErrInvalidInput, "parent name must be 1-100 chars")
)

// IsNotFound reports whether err means a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err means a uniqueness conflict.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsDuplicate checks if the error marks a resubmitted idempotency key.
// Duplicates are not failures: the caller must treat them as a prior success.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed)
}

// IsValidation reports whether err means rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrBatchTooLarge)
}

// IsRetryable checks if the operation can be retried. Transaction aborts are
// safe to retry end-to-end because ingestion is keyed by device attempt ids.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionFailed) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
