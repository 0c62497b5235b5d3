// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Segment errors
	ErrSegmentNotFound = &Error{Code: "SEGMENT_NOT_FOUND", Message: "segment not found in archive"}
	ErrInvalidSegment  = &Error{Code: "INVALID_SEGMENT", Message: "invalid segment name"}

	// Compression errors
	ErrCompressionFailed   = &Error{Code: "COMPRESSION_FAILED", Message: "compression failed"}
	ErrDecompressionFailed = &Error{Code: "DECOMPRESSION_FAILED", Message: "decompression failed"}

	// Object store errors
	ErrObjectNotFound = &Error{Code: "OBJECT_NOT_FOUND", Message: "object not found"}
	ErrUploadFailed   = &Error{Code: "UPLOAD_FAILED", Message: "upload failed"}
	ErrFetchFailed    = &Error{Code: "FETCH_FAILED", Message: "fetch failed"}
	ErrDeleteFailed   = &Error{Code: "DELETE_FAILED", Message: "delete failed"}
	ErrListFailed     = &Error{Code: "LIST_FAILED", Message: "listing objects failed"}

	// Local cache errors
	ErrCacheFailed = &Error{Code: "CACHE_FAILED", Message: "segment cache I/O failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
