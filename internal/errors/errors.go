package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFetch      ErrorType = "FETCH"
	ErrTypeMalformed  ErrorType = "MALFORMED_INPUT"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeMisaligned ErrorType = "MISALIGNED"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNoData     ErrorType = "NO_DATA"
)

// Sentinels for errors.Is. An *AppError matches the sentinel of its Type.
var (
	ErrFetchFailure     = errors.New("fetch failure")
	ErrMalformedInput   = errors.New("malformed input")
	ErrParseFailure     = errors.New("parse failure")
	ErrMisalignedSeries = errors.New("misaligned series")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrStorage          = errors.New("storage failure")
	ErrConfig           = errors.New("configuration error")
	ErrNoSnapshot       = errors.New("no data loaded")
)

var sentinels = map[ErrorType]error{
	ErrTypeFetch:      ErrFetchFailure,
	ErrTypeMalformed:  ErrMalformedInput,
	ErrTypeParsing:    ErrParseFailure,
	ErrTypeMisaligned: ErrMisalignedSeries,
	ErrTypeValidation: ErrValidation,
	ErrTypeNotFound:   ErrNotFound,
	ErrTypeStorage:    ErrStorage,
	ErrTypeConfig:     ErrConfig,
	ErrTypeNoData:     ErrNoSnapshot,
}

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's type.
func (e *AppError) Is(target error) bool {
	s, ok := sentinels[e.Type]
	return ok && s == target
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewFetchError wraps a retrieval failure of a source file.
func NewFetchError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFetch, message, cause)
}

// NewMalformedError reports a header or row shape violation.
func NewMalformedError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformed, message, cause)
}

// NewParsingError reports a cell that is not a count.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewMisalignedError reports series that cannot be combined index by index.
func NewMisalignedError(message string) *AppError {
	return NewAppError(ErrTypeMisaligned, message, nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNoDataError reports that no refresh has succeeded yet.
func NewNoDataError() *AppError {
	return NewAppError(ErrTypeNoData, "no data has been loaded yet", nil)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
