package httpclient

import (
	"io"
)

// Media types the client recognises.
const (
	MediaTypeJSON        = "application/json"
	MediaTypeEventStream = "text/event-stream"
)

// Request describes one outbound call.
type Request struct {
	Method string
	// Path is joined with Config.BaseURL, or used as is when it is a full URL.
	Path string
	// Headers win over Config.Headers.
	Headers map[string]string
	// Body may be an io.Reader, []byte, string, or any JSON-encodable value.
	Body any
	// Auth replaces Config.Auth for this request.
	Auth *AuthConfig
}

// Response is a fully read reply.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Headers["Content-Type"]
}

// StreamResponse is a 2xx reply whose body is read incrementally. The caller
// must Close it.
type StreamResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       io.ReadCloser
}

// ContentType returns the Content-Type header.
func (r *StreamResponse) ContentType() string {
	return r.Headers["Content-Type"]
}

// IsEventStream reports whether the reply declares a text/event-stream body.
func (r *StreamResponse) IsEventStream() bool {
	return hasMediaType(r.ContentType(), MediaTypeEventStream)
}

// Close releases the connection. It is safe to call more than once.
func (r *StreamResponse) Close() error {
	if r.Body != nil {
		return r.Body.Close()
	}
	return nil
}
