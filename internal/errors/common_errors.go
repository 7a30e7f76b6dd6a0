package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeUserCancelled    ErrorType = "USER_CANCELLED"
	ErrTypeNoInputFiles     ErrorType = "NO_INPUT_FILES"
	ErrTypeSchemaMismatch   ErrorType = "SCHEMA_MISMATCH"
	ErrTypeFlagFileNotFound ErrorType = "FLAG_FILE_NOT_FOUND"
	ErrTypeFlagFileFormat   ErrorType = "FLAG_FILE_FORMAT"
	ErrTypeDateParse        ErrorType = "DATE_PARSE"
	ErrTypeIO               ErrorType = "IO"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// Sentinels for errors.Is. An *AppError matches the sentinel of its Type.
var (
	ErrUserCancelled    = errors.New("user cancelled")
	ErrNoInputFiles     = errors.New("no input files")
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrFlagFileNotFound = errors.New("flag file not found")
	ErrFlagFileFormat   = errors.New("flag file format")
	ErrDateParse        = errors.New("date parse")
	ErrIO               = errors.New("io failure")
	ErrValidation       = errors.New("validation failed")
	ErrConfig           = errors.New("invalid configuration")
)

var sentinels = map[ErrorType]error{
	ErrTypeUserCancelled:    ErrUserCancelled,
	ErrTypeNoInputFiles:     ErrNoInputFiles,
	ErrTypeSchemaMismatch:   ErrSchemaMismatch,
	ErrTypeFlagFileNotFound: ErrFlagFileNotFound,
	ErrTypeFlagFileFormat:   ErrFlagFileFormat,
	ErrTypeDateParse:        ErrDateParse,
	ErrTypeIO:               ErrIO,
	ErrTypeValidation:       ErrValidation,
	ErrTypeConfig:           ErrConfig,
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

// Is matches the sentinel registered for the error's type
func (e *AppError) Is(target error) bool {
	return sentinels[e.Type] == target
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

// NewUserCancelledError signals that no folder or file was chosen
func NewUserCancelledError(step string) *AppError {
	return NewAppError(ErrTypeUserCancelled, fmt.Sprintf("no %s selected", step), nil).
		WithContext("step", step)
}

// NewNoInputFilesError reports an empty source folder
func NewNoInputFilesError(dir, pattern string) *AppError {
	return NewAppError(ErrTypeNoInputFiles, fmt.Sprintf("no %s files found in %s", pattern, dir), nil).
		WithContext("directory", dir).
		WithContext("pattern", pattern)
}

// NewSchemaMismatchError reports a source line with the wrong number of fields
func NewSchemaMismatchError(file string, line, got, want int) *AppError {
	return NewAppError(ErrTypeSchemaMismatch,
		fmt.Sprintf("%s line %d has %d fields, expected %d", file, line, got, want), nil).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("fields", got)
}

// NewFlagFileNotFoundError reports a flag report path that does not exist
func NewFlagFileNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeFlagFileNotFound, fmt.Sprintf("flag file %s not found", path), cause).
		WithContext("path", path)
}

// NewFlagFileFormatError reports a flag report with an unusable layout
func NewFlagFileFormatError(path, message string) *AppError {
	return NewAppError(ErrTypeFlagFileFormat, fmt.Sprintf("flag file %s: %s", path, message), nil).
		WithContext("path", path)
}

// NewDateParseWarning reports a date token that could not be reformatted.
// It is logged, never returned.
func NewDateParseWarning(value string, cause error) *AppError {
	return NewAppError(ErrTypeDateParse, fmt.Sprintf("cannot parse date %q", value), cause).
		WithContext("value", value)
}

// NewIOError wraps a file system failure
func NewIOError(operation, path string, cause error) *AppError {
	return NewAppError(ErrTypeIO, fmt.Sprintf("%s %s", operation, path), cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// UserMessage renders err as the single human-readable line shown to the user
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Type {
	case ErrTypeNoInputFiles:
		return "No source files found. " + appErr.Message
	case ErrTypeSchemaMismatch:
		return "Malformed source file: " + appErr.Message
	case ErrTypeFlagFileNotFound:
		return "Flag report not found: " + appErr.Message
	case ErrTypeFlagFileFormat:
		return "Flag report has an unexpected layout: " + appErr.Message
	case ErrTypeIO:
		if appErr.Cause != nil {
			return fmt.Sprintf("File error during %s: %v", appErr.Message, appErr.Cause)
		}
		return "File error during " + appErr.Message
	}
	return appErr.Error()
}
