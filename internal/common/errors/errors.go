// Package errors provides standardized error handling for the activities API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Registry rule violations
const (
	ErrCodeActivityNotFound    ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadySignedUp     ErrorCode = "ALREADY_SIGNED_UP"
	ErrCodeActivityFull        ErrorCode = "ACTIVITY_FULL"
	ErrCodeParticipantNotFound ErrorCode = "PARTICIPANT_NOT_FOUND"
)

// Request, seed and sink failures
const (
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeCatalogInvalid         ErrorCode = "CATALOG_INVALID"
	ErrCodeEventPublishFailed     ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeAuditWriteFailed       ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// Kind groups error codes by how they are surfaced to callers.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindValidation Kind = "validation"
	KindInternal   Kind = "internal"
)

// StandardError represents a structured application error. Message is the
// human-readable text returned to HTTP callers as "detail".
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Kind reports the category of the error code.
func (e *StandardError) Kind() Kind {
	return KindOf(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError is returned when an activity name is not a registry key.
func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadySignedUpError is returned when the normalized email is already a participant.
func NewAlreadySignedUpError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySignedUp,
		Message:   "Student is already signed up",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActivityFullError is returned when an activity is at capacity.
func NewActivityFullError(activity string, maxParticipants int) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityFull,
		Message:   "Activity is full",
		Details:   fmt.Sprintf("activity: %s, max_participants: %d", activity, maxParticipants),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewParticipantNotFoundError is returned when no participant matches the normalized email.
func NewParticipantNotFoundError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParticipantNotFound,
		Message:   "Participant not found",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports a malformed request.
func NewInvalidInputError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError reports a seed or catalog that breaks registry invariants.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Activity catalog is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventPublishFailedError creates a retryable event feed error.
func NewEventPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventPublishFailed,
		Message:   "Participant event publish failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit journal error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit journal write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Error Classification
// ==========================

// KindOf maps an error code to its category.
func KindOf(code ErrorCode) Kind {
	switch code {
	case ErrCodeActivityNotFound, ErrCodeParticipantNotFound:
		return KindNotFound
	case ErrCodeAlreadySignedUp, ErrCodeActivityFull:
		return KindConflict
	case ErrCodeInvalidInput:
		return KindValidation
	default:
		return KindInternal
	}
}

// HTTPStatus returns the response status for an error code. Conflicts are
// reported as 400 to match the published API.
func HTTPStatus(code ErrorCode) int {
	switch KindOf(code) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError unwraps err to a *StandardError if one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeEventPublishFailed, ErrCodeAuditWriteFailed, ErrCodeNotificationSendFailed:
		return true
	}
	return false
}
