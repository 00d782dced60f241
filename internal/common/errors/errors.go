// Package errors provides standardized error handling for the jobs service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeWorkerNotFound  ErrorCode = "WORKER_NOT_FOUND"
	ErrCodeDuplicateWorker ErrorCode = "DUPLICATE_WORKER"
	ErrCodeJobNotFound     ErrorCode = "JOB_NOT_FOUND"
	ErrCodeMatchNotFound   ErrorCode = "MATCH_NOT_FOUND"

	ErrCodeInvalidWorkerData ErrorCode = "INVALID_WORKER_DATA"
	ErrCodeInvalidJobData    ErrorCode = "INVALID_JOB_DATA"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeSessionLoadFailed ErrorCode = "SESSION_LOAD_FAILED"
	ErrCodeSessionSaveFailed ErrorCode = "SESSION_SAVE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
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

// ==========================
// 2. Error Constructors
// ==========================

// NewWorkerNotFoundError creates a non-retryable lookup error.
func NewWorkerNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkerNotFound,
		Message:   "Worker not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateWorkerError creates a non-retryable duplicate registration error.
func NewDuplicateWorkerError(phone string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateWorker,
		Message:   "Phone number already registered",
		Details:   fmt.Sprintf("phone: %s", phone),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobNotFoundError creates a non-retryable lookup error.
func NewJobNotFoundError(jobID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobNotFound,
		Message:   "Job not found",
		Details:   fmt.Sprintf("jobId: %d", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchNotFoundError creates a non-retryable data-integrity error. A match
// whose worker or job link is broken also lands here.
func NewMatchNotFoundError(matchID int64, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchNotFound,
		Message:   "Match not found or missing related data",
		Details:   fmt.Sprintf("matchId: %d, %s", matchID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWorkerDataError creates a non-retryable validation error.
func NewInvalidWorkerDataError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWorkerData,
		Message:   "Invalid worker data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidJobDataError creates a non-retryable validation error.
func NewInvalidJobDataError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobData,
		Message:   "Invalid job data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionLoadFailedError creates a retryable session store error.
func NewSessionLoadFailedError(sessionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionLoadFailed,
		Message:   "Session store read error",
		Details:   fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionSaveFailedError creates a retryable session store error.
func NewSessionSaveFailedError(sessionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionSaveFailed,
		Message:   "Session store write error",
		Details:   fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable gateway error. The core
// records it per match and does not retry on its own.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification send failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// CodeOf extracts the ErrorCode from err, or empty if err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsNotFound reports whether err is any of the not-found codes.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrCodeWorkerNotFound, ErrCodeJobNotFound, ErrCodeMatchNotFound:
		return true
	}
	return false
}

// IsDuplicateWorker reports whether err is the duplicate registration code.
func IsDuplicateWorker(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateWorker
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
