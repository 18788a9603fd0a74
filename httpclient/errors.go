package httpclient

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kbukum/llmaid/errors"
)

// ErrorCode classifies transport failures.
type ErrorCode string

const (
	// ErrCodeTimeout is a deadline hit or a cancelled context.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeConnection is a failure to reach the backend (refused, DNS, reset).
	ErrCodeConnection ErrorCode = "connection"
	// ErrCodeAuth is a 401 or 403 reply.
	ErrCodeAuth ErrorCode = "auth"
	// ErrCodeNotFound is a 404 reply, e.g. an unknown model.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeRateLimit is a 429 reply.
	ErrCodeRateLimit ErrorCode = "rate_limit"
	// ErrCodeValidation is any other 4xx reply, or a request that could not
	// be built.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeServer is a 5xx reply.
	ErrCodeServer ErrorCode = "server"
)

// Error is a classified transport failure. Status errors carry the response
// status and body; connection-level errors carry the cause in Err.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStatus reports whether the error came from a non-2xx response.
func (e *Error) IsStatus() bool {
	return e.StatusCode > 0
}

// NewTimeoutError wraps a deadline or cancellation.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

// NewConnectionError wraps a dial or read failure.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

// NewValidationError reports a request that could not be built.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatusCode turns a non-2xx reply into an *Error, or returns nil for
// 2xx. When the body is a provider error envelope its message is used,
// otherwise the status text.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	msg := http.StatusText(statusCode)
	if eb, ok := errors.ParseResponse(body); ok {
		msg = eb.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &Error{
		StatusCode: statusCode,
		Code:       codeForStatus(statusCode),
		Message:    msg,
		Body:       body,
	}
}

func codeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrCodeAuth
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case status >= 400 && status < 500:
		return ErrCodeValidation
	default:
		return ErrCodeServer
	}
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

// CodeOf returns the code of the *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// HasCode reports whether err wraps an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
