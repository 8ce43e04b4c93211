package domain

import (
	"fmt"
	"time"
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrDatabaseError  = "DATABASE_ERROR"
	ErrInconsistency  = "INTERNAL_INCONSISTENCY"
	ErrRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrValidation     = "VALIDATION_ERROR"
	ErrNotFound       = "NOT_FOUND"
)

// ValidationError represents an input validation failure. The Message is the
// user-facing text naming the field, the actual value, and the violated
// constraint; its literal format is part of the caller contract.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface. It returns the message verbatim so
// existing callers and tests can match on the documented text.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// InconsistencyError signals a mismatch between a coefficient table and the
// term vector its group builder produced. This is a programming or data error
// in the constant tables, never a user input problem, and callers must be
// able to tell the two apart.
type InconsistencyError struct {
	Group   RiskGroup `json:"group"`
	Missing []string  `json:"missing"`
}

// Error implements the error interface
func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("coefficient/term mismatch for group %s: %v", e.Group, e.Missing)
}

// NewInconsistencyError creates a new InconsistencyError
func NewInconsistencyError(group RiskGroup, missing []string) *InconsistencyError {
	return &InconsistencyError{
		Group:   group,
		Missing: missing,
	}
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
