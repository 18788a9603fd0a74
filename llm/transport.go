package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/kbukum/llmaid/config"
	"github.com/kbukum/llmaid/httpclient"
)

// DefaultCompletionPath is appended to the base URL of every request.
const DefaultCompletionPath = "/completions"

// HeaderRequestID carries the per-call request ID to the provider.
const HeaderRequestID = "X-Request-ID"

// Transport sends prepared HTTP requests. *httpclient.Client implements it.
type Transport interface {
	Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
	DoStream(ctx context.Context, req httpclient.Request) (*httpclient.StreamResponse, error)
}

var _ Transport = (*httpclient.Client)(nil)

// completionURL joins base and path with exactly one slash.
func completionURL(base, path string) string {
	if path == "" {
		path = DefaultCompletionPath
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// httpRequest converts a prepared request into a transport request. The
// base URL varies per call, so the path is always a full URL.
func (p *PreparedRequest) httpRequest() httpclient.Request {
	return httpclient.Request{
		Method:  p.Method,
		Path:    p.URL,
		Headers: map[string]string{HeaderRequestID: p.RequestID},
		Body:    p.Body,
		Auth:    httpclient.BearerAuth(p.Settings.Secret),
	}
}

// newPreparedRequest assembles the request for resolved settings.
func newPreparedRequest(s config.Settings, path, requestID, prompt string, stream bool) *PreparedRequest {
	return &PreparedRequest{
		Method:    http.MethodPost,
		URL:       completionURL(s.BaseURL, path),
		RequestID: requestID,
		Settings:  s,
		Body:      newCompletionRequest(s, prompt, stream),
	}
}
