package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Masterlist/userlist errors
	ErrListRead    ErrorCode = "LIST_READ"
	ErrListParse   ErrorCode = "LIST_PARSE"
	ErrListInvalid ErrorCode = "LIST_INVALID"

	// Game registry errors
	ErrGameUnknown     ErrorCode = "GAME_UNKNOWN"
	ErrGameUnsupported ErrorCode = "GAME_UNSUPPORTED"

	// Plugin header errors
	ErrHeaderRead  ErrorCode = "HEADER_READ"
	ErrHeaderParse ErrorCode = "HEADER_PARSE"
	ErrHeaderCache ErrorCode = "HEADER_CACHE"

	// Load order errors
	ErrLoadOrderRead ErrorCode = "LOADORDER_READ"
	ErrDataDirAccess ErrorCode = "DATADIR_ACCESS"

	// Masterlist update errors
	ErrUpdateFetch ErrorCode = "UPDATE_FETCH"
	ErrUpdateDirty ErrorCode = "UPDATE_DIRTY"

	// Ignore filter errors
	ErrIgnoreRead    ErrorCode = "IGNORE_READ"
	ErrIgnorePattern ErrorCode = "IGNORE_PATTERN"
)

// LintError represents a structured error with code and details
type LintError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LintError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LintError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LintError) Is(target error) bool {
	var targetErr *LintError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LintError with the given code and message
func New(code ErrorCode, message string) *LintError {
	return &LintError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LintError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LintError {
	return &LintError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LintError
func Wrap(err error, code ErrorCode, message string) *LintError {
	if err == nil {
		return nil
	}
	return &LintError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LintError {
	if err == nil {
		return nil
	}
	return &LintError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LintError) WithDetail(key string, value interface{}) *LintError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var lintErr *LintError
	if errors.As(err, &lintErr) {
		return lintErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LintError
func GetErrorCode(err error) ErrorCode {
	var lintErr *LintError
	if errors.As(err, &lintErr) {
		return lintErr.Code
	}
	return ErrUnknown
}
