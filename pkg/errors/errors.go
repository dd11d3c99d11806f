// Package errors provides categorized error types for the reconciliation tool.
//
// Every error carries a category, a machine-readable code, an optional
// suggestion for the operator, and arbitrary context values. Categories map
// to process exit codes so the CLI can communicate failure classes to
// calling scripts.
//
// Only the fatal conditions of a reconciliation run (missing input file,
// empty dataset, no usable key column) are expressed through this package;
// advisory findings never become errors and travel inside reports instead.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors (the fatal subset of data-quality findings)
	CodeEmptyDataset     ErrorCode = "empty_dataset"
	CodeMissingKeyColumn ErrorCode = "missing_key_column"
	CodeInvalidAmount    ErrorCode = "invalid_amount"
	CodeInvalidDate      ErrorCode = "invalid_date"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Reconciliation errors
	CodeMatchingFailed  ErrorCode = "matching_failed"
	CodeProcessingError ErrorCode = "processing_error"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ReconcilerError is the base error type for all application errors
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// FormatDetailed returns a multi-line description including context values
func (e *ReconcilerError) FormatDetailed() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s/%s] %s", e.Category, e.Code, e.Message))

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  suggestion: %s", e.Suggestion))
	}

	if len(e.Context) > 0 {
		b.WriteString("\n  context:")
		for key, value := range e.Context {
			b.WriteString(fmt.Sprintf("\n    %s: %v", key, value))
		}
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  caused by: %v", e.Cause))
	}

	return b.String()
}

// New creates a new ReconcilerError with a stack trace
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// Newf creates a new ReconcilerError with a formatted message
func Newf(category ErrorCategory, code ErrorCode, format string, args ...interface{}) *ReconcilerError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with category and code information
func Wrap(cause error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if cause == nil {
		return nil
	}

	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      cause,
		StackTrace: captureStackTrace(),
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(cause error, category ErrorCategory, code ErrorCode, format string, args ...interface{}) *ReconcilerError {
	return Wrap(cause, category, code, fmt.Sprintf(format, args...))
}

// NewFileError creates a file-related error with a standard suggestion
func NewFileError(code ErrorCode, path string, cause error) *ReconcilerError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check that the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied reading file: %s", path)
		suggestion = "check file permissions"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted or unreadable: %s", path)
		suggestion = "re-export the file from its source system"
	default:
		message = fmt.Sprintf("file error: %s", path)
	}

	err := Wrap(cause, CategoryFile, code, message)
	if err == nil {
		err = New(CategoryFile, code, message)
	}
	return err.WithSuggestion(suggestion).WithContext("path", path)
}

// NewEmptyDatasetError creates the fatal error for an empty input dataset
func NewEmptyDatasetError(source string) *ReconcilerError {
	return Newf(CategoryValidation, CodeEmptyDataset,
		"the %s dataset contains no usable rows", source).
		WithSuggestion("verify the export contains data and that metadata rows were stripped correctly").
		WithContext("source", source)
}

// NewMissingKeyColumnError creates the fatal error for a dataset without a
// usable document key column
func NewMissingKeyColumnError(source, role string) *ReconcilerError {
	return Newf(CategoryValidation, CodeMissingKeyColumn,
		"the %s dataset has no column mapped to the %s role", source, role).
		WithSuggestion("check the schema mapping for the source file").
		WithContext("source", source).
		WithContext("role", role)
}

// IsCategory checks whether err is a ReconcilerError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var recErr *ReconcilerError
	if errors.As(err, &recErr) {
		return recErr.Category == category
	}
	return false
}

// IsCode checks whether err is a ReconcilerError with the given code
func IsCode(err error, code ErrorCode) bool {
	var recErr *ReconcilerError
	if errors.As(err, &recErr) {
		return recErr.Code == code
	}
	return false
}

// AsReconcilerError extracts a ReconcilerError from an error chain
func AsReconcilerError(err error) (*ReconcilerError, bool) {
	var recErr *ReconcilerError
	if errors.As(err, &recErr) {
		return recErr, true
	}
	return nil, false
}

// GetExitCode extracts the exit code from any error
func GetExitCode(err error) int {
	var recErr *ReconcilerError
	if errors.As(err, &recErr) {
		return recErr.GetExitCode()
	}
	return 1
}

// captureStackTrace captures the current stack trace using pkg/errors
func captureStackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	if st, ok := errors.New("").(stackTracer); ok {
		trace := st.StackTrace()
		if len(trace) > 2 {
			return trace[2:] // skip the frames inside this package
		}
		return trace
	}
	return nil
}
