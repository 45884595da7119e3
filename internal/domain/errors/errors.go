// Package errors provides domain-specific errors for the tokenlens application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrModelNotFound      = errors.New("model not found")
	ErrModelIDRequired    = errors.New("model ID required")
	ErrDuplicateModel     = errors.New("duplicate model ID")
	ErrUnknownFamily      = errors.New("unknown model family")
	ErrNegativePrice      = errors.New("price must be non-negative")
	ErrInvalidContext     = errors.New("context window must be positive")
	ErrEmptyResultSet     = errors.New("at least one model result required")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrBinaryLength       = errors.New("binary string length must be divisible by 8")
	ErrBinaryDigit        = errors.New("binary string may only contain 0 and 1")
	ErrHexLength          = errors.New("hex string length must be even")
	ErrHexDigit           = errors.New("hex string contains non-hexadecimal characters")
	ErrInvalidBase64      = errors.New("invalid base64 input")
	ErrInvalidUTF8        = errors.New("decoded bytes are not valid UTF-8")
	ErrTokenizerFailed    = errors.New("tokenizer failed")
	ErrTokenizerDisabled  = errors.New("tokenizer backend disabled")
	ErrEmptyInput         = errors.New("no input text")
	ErrInvalidCharsPerTok = errors.New("characters per token must be at least 1")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeInput         ErrorCode = "INPUT"
	CodeConfiguration ErrorCode = "CONFIG"
)

// TokenlensError wraps errors with additional context for debugging and handling.
type TokenlensError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *TokenlensError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *TokenlensError) Unwrap() error {
	return e.Cause
}

// NewError creates a new TokenlensError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *TokenlensError {
	return &TokenlensError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
func WithContext(err *TokenlensError, key string, value interface{}) *TokenlensError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// Is reports whether err matches target using errors.Is semantics.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// NotFound is shorthand for a NOT_FOUND error about a named resource.
func NotFound(kind, id string, cause error) *TokenlensError {
	err := NewError(CodeNotFound, fmt.Sprintf("%s %q not found", kind, id), cause)
	return WithContext(err, kind, id)
}
