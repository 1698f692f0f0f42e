package cipher

import (
	"encoding/json"
	"fmt"
)

// Error codes
const (
	ErrCodeDecipherFuncNotFound = "DECIPHER_FUNC_NOT_FOUND"
	ErrCodeHelperObjectNotFound = "HELPER_OBJECT_NOT_FOUND"
	ErrCodeUnknownTransform     = "UNKNOWN_TRANSFORM"
	ErrCodeMissingLiteral       = "MISSING_CALL_LITERAL"
	ErrCodeScriptDownload       = "SCRIPT_DOWNLOAD_FAILED"
	ErrCodeJSExecutionFailed    = "JS_EXECUTION_FAILED"
	ErrCodeNFuncNotFound        = "N_FUNC_NOT_FOUND"
)

// Error represents a structured error with code and details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		*Alias
		Error string `json:"error"`
	}{
		Alias: (*Alias)(e),
		Error: e.Error(),
	})
}

// NewError creates a new Error with the given code and message
func NewError(code string, message string, details ...any) *Error {
	e := &Error{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// IsNotFound returns true if the error indicates the decipher function or its
// helper object could not be located in the script.
func IsNotFound(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == ErrCodeDecipherFuncNotFound || e.Code == ErrCodeHelperObjectNotFound || e.Code == ErrCodeNFuncNotFound
	}
	return false
}

// IsUnknownTransform returns true if a decipher statement matched none of the
// known transform shapes.
func IsUnknownTransform(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == ErrCodeUnknownTransform || e.Code == ErrCodeMissingLiteral
	}
	return false
}

// IsJSError returns true if the error is a JavaScript execution error
func IsJSError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == ErrCodeJSExecutionFailed
	}
	return false
}
