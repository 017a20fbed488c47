// Package errors provides categorized errors for the tool boundary: loading
// configuration and tree dumps, and talking to external processes.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryConfig ErrorCategory = "CONFIG"
	CategoryInput  ErrorCategory = "INPUT"
	CategoryOracle ErrorCategory = "ORACLE"
	CategorySystem ErrorCategory = "SYSTEM"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
	Cause    error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StandardError) Unwrap() error {
	return e.Cause
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// Wrap sets the cause and returns e.
func (e *StandardError) Wrap(cause error) *StandardError {
	e.Cause = cause
	return e
}

// CategoryOf returns the category of the first StandardError in err's
// chain, or the empty category.
func CategoryOf(err error) ErrorCategory {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// Common error constructors
func InvalidConfig(url string, cause error) *StandardError {
	return NewStandardError(CategoryConfig, "INVALID_CONFIG",
		fmt.Sprintf("invalid configuration %s", url),
		map[string]interface{}{"url": url}).Wrap(cause)
}

func InvalidTree(url string, cause error) *StandardError {
	return NewStandardError(CategoryInput, "INVALID_TREE",
		fmt.Sprintf("invalid grammar tree %s", url),
		map[string]interface{}{"url": url}).Wrap(cause)
}

func OracleFailure(command string, cause error) *StandardError {
	return NewStandardError(CategoryOracle, "ORACLE_FAILURE",
		fmt.Sprintf("type oracle %q failed", command),
		map[string]interface{}{"command": command}).Wrap(cause)
}
