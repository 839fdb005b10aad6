package nepsereport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode defines error classification codes for structured error handling.
type ErrorCode string

// Error codes for different error categories.
const (
	// ErrCodeSchema means a required column is missing from an input table.
	ErrCodeSchema ErrorCode = "SCHEMA_ERROR"
	// ErrCodeParse means a cell could not be parsed after sanitization.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeEmptyResult means nothing survived filtering for a view.
	// It is informational: the rest of the report is still valid.
	ErrCodeEmptyResult  ErrorCode = "EMPTY_RESULT"
	ErrCodeDataQuality  ErrorCode = "DATA_QUALITY"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnsupported  ErrorCode = "UNSUPPORTED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with classification code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with classification code and additional context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsErrorCode checks if an error, or any error it wraps, carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first structured error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

func schemaError(table string, missing []string, found []string) *Error {
	return NewError(ErrCodeSchema, fmt.Sprintf("%s: missing column(s) %s; found: [%s]",
		table, quoteList(missing), strings.Join(found, ", ")))
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
