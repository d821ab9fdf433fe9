package graph

import (
	"errors"
	"fmt"
)

// Error represents a typed failure surfaced by the graph engine.
//
// Error kinds:
//   - Not found: the referenced artifact or edge is absent or soft-deleted
//   - Cycle detected: an edge insertion was rejected; no partial state remains
//   - Validation failed: malformed input rejected before any storage access
//   - Storage failure: the row store failed; wrapped and propagated unchanged
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ArtifactID identifies the affected artifact, when known.
	ArtifactID string

	// EdgeID identifies the affected edge, when known.
	EdgeID string

	// Err is the underlying cause (storage failures only).
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a missing or soft-deleted artifact or edge.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeCycleDetected indicates an edge insertion would close a cycle.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"

	// ErrCodeValidationFailed indicates malformed input.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// ErrCodeStorageFailure indicates the row store adapter failed.
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.ArtifactID != "":
		return fmt.Sprintf("%s: %s (artifact=%s)", e.Code, e.Message, e.ArtifactID)
	case e.EdgeID != "":
		return fmt.Sprintf("%s: %s (edge=%s)", e.Code, e.Message, e.EdgeID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsCycleDetected returns true if the error is a cycle rejection.
func IsCycleDetected(err error) bool {
	return hasCode(err, ErrCodeCycleDetected)
}

// IsValidationFailed returns true if the error is an input validation error.
func IsValidationFailed(err error) bool {
	return hasCode(err, ErrCodeValidationFailed)
}

// IsStorageFailure returns true if the error wraps a row store failure.
func IsStorageFailure(err error) bool {
	return hasCode(err, ErrCodeStorageFailure)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func notFoundError(message, artifactID, edgeID string) *Error {
	return &Error{
		Code:       ErrCodeNotFound,
		Message:    message,
		ArtifactID: artifactID,
		EdgeID:     edgeID,
	}
}

func cycleError(sourceID, targetID string) *Error {
	return &Error{
		Code:    ErrCodeCycleDetected,
		Message: fmt.Sprintf("linking %s -> %s would create a cycle", sourceID, targetID),
	}
}

func validationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidationFailed,
		Message: message,
	}
}

func storageError(op string, err error) *Error {
	return &Error{
		Code:    ErrCodeStorageFailure,
		Message: op,
		Err:     err,
	}
}
