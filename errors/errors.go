package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error is the single error type returned by llmaid.
type Error struct {
	// Kind classifies the error.
	Kind Kind `json:"kind"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Field names the configuration field involved (KindConfig).
	Field string `json:"field,omitempty"`
	// Value is the offending raw input: an environment string, a stream line.
	Value string `json:"value,omitempty"`
	// StatusCode is the HTTP status reported by the provider (KindProviderHTTP).
	StatusCode int `json:"status_code,omitempty"`
	// Body is the raw provider response body, when available.
	Body []byte `json:"-"`
	// Details carries extra structured context.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("llmaid: ")
	b.WriteString(e.Kind.String())
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " [raw: %q]", e.Value)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// --- Constructors ---

// Config creates a KindConfig error for a field that could not be resolved.
func Config(field, message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: fmt.Sprintf("%s: %s", field, message),
		Field:   field,
	}
}

// ConfigValue creates a KindConfig error for a raw value that failed to parse.
func ConfigValue(field, raw string, cause error) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: fmt.Sprintf("%s: cannot parse value", field),
		Field:   field,
		Value:   raw,
		Cause:   cause,
	}
}

// Template creates a KindTemplate error listing the unbound placeholders.
func Template(missing []string) *Error {
	return &Error{
		Kind:    KindTemplate,
		Message: fmt.Sprintf("missing template variables: %s", strings.Join(missing, ", ")),
		Details: map[string]any{"missing": missing},
	}
}

// ProviderHTTP creates a KindProviderHTTP error carrying the status and raw body.
func ProviderHTTP(statusCode int, body []byte) *Error {
	msg := fmt.Sprintf("provider returned HTTP %d", statusCode)
	if eb, ok := ParseResponse(body); ok && eb.Message != "" {
		msg = eb.Message
	}
	return &Error{
		Kind:       KindProviderHTTP,
		Message:    msg,
		StatusCode: statusCode,
		Body:       body,
	}
}

// Provider creates a KindProvider error. raw is the offending data, if any.
func Provider(message, raw string, cause error) *Error {
	return &Error{
		Kind:    KindProvider,
		Message: message,
		Value:   raw,
		Cause:   cause,
	}
}

// --- Inspection ---

// As returns the *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of the *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	if e, ok := As(err); ok {
		return e.Kind, true
	}
	return 0, false
}

func is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsConfig reports whether err is a KindConfig error.
func IsConfig(err error) bool { return is(err, KindConfig) }

// IsTemplate reports whether err is a KindTemplate error.
func IsTemplate(err error) bool { return is(err, KindTemplate) }

// IsProviderHTTP reports whether err is a KindProviderHTTP error.
func IsProviderHTTP(err error) bool { return is(err, KindProviderHTTP) }

// IsProvider reports whether err is a KindProvider error.
func IsProvider(err error) bool { return is(err, KindProvider) }
