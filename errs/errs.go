package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVideoID indicates that the supplied video ID fails syntactic validation.
	ErrInvalidVideoID = errors.New("invalid video id")
	// ErrCipherFailed indicates failure during signature deciphering.
	ErrCipherFailed = errors.New("cipher failed")
	// ErrRateLimited indicates throttling or rate limiting by the remote service.
	ErrRateLimited = errors.New("rate limited")
)

// VideoUnavailableError indicates that the platform reports the video as
// missing or restricted. Code and Reason carry the native error fields from
// the video info response.
type VideoUnavailableError struct {
	VideoID string
	Code    int
	Reason  string
}

func (e *VideoUnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("video %s unavailable (code %d): %s", e.VideoID, e.Code, e.Reason)
	}
	return fmt.Sprintf("video %s unavailable (code %d)", e.VideoID, e.Code)
}

// VideoRequiresPurchaseError indicates that the content is purchase-gated.
// PreviewVideoID identifies the free preview substitute offered instead.
type VideoRequiresPurchaseError struct {
	VideoID        string
	PreviewVideoID string
}

func (e *VideoRequiresPurchaseError) Error() string {
	return fmt.Sprintf("video %s requires purchase (preview: %s)", e.VideoID, e.PreviewVideoID)
}

// ParseError indicates that an expected field, function, or header could not
// be located while parsing a response.
type ParseError struct {
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %v", e.Context, e.Err)
	}
	return fmt.Sprintf("parse %s: not found", e.Context)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError for the given context with an optional cause.
func NewParseError(context string, cause ...error) *ParseError {
	e := &ParseError{Context: context}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// IsUnavailable reports whether err is a VideoUnavailableError.
func IsUnavailable(err error) bool {
	var e *VideoUnavailableError
	return errors.As(err, &e)
}

// IsRequiresPurchase reports whether err is a VideoRequiresPurchaseError.
func IsRequiresPurchase(err error) bool {
	var e *VideoRequiresPurchaseError
	return errors.As(err, &e)
}

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}
