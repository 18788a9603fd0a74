package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_Do_POST_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/completions" {
			t.Errorf("expected /v1/completions, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/v1/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/completions",
		Body:   map[string]any{"model": "m", "prompt": "hi"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), `"prompt":"hi"`) {
		t.Errorf("unexpected body %s", resp.Body)
	}
	if resp.ContentType() != "application/json" {
		t.Errorf("unexpected headers %v", resp.Headers)
	}
}

func TestClient_Do_Auth_Bearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Default"); got != "yes" {
			t.Errorf("X-Default = %q", got)
		}
		if got := r.Header.Get("X-Request-Id"); got != "abc" {
			t.Errorf("X-Request-Id = %q", got)
		}
	}))
	defer srv.Close()

	c, err := New(Config{
		BaseURL: srv.URL,
		Auth:    BearerAuth("sk-test"),
		Headers: map[string]string{"X-Default": "yes", "X-Request-Id": "default"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = c.Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/",
		Headers: map[string]string{"X-Request-Id": "abc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_Auth_PerRequestOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer per-call" {
			t.Errorf("Authorization = %q", got)
		}
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Auth: BearerAuth("client")})
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/", Auth: BearerAuth("per-call")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_ErrorClassification(t *testing.T) {
	tests := []struct {
		code int
		want ErrorCode
	}{
		{401, ErrCodeAuth},
		{403, ErrCodeAuth},
		{404, ErrCodeNotFound},
		{429, ErrCodeRateLimit},
		{500, ErrCodeServer},
		{503, ErrCodeServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(`{"error":"test"}`))
			}))
			defer srv.Close()

			c, err := New(Config{BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := CodeOf(err); got != tt.want {
				t.Errorf("HTTP %d classified as %q, want %q", tt.code, got, tt.want)
			}
			e, _ := AsError(err)
			if string(e.Body) != `{"error":"test"}` {
				t.Errorf("expected raw body on error, got %q", e.Body)
			}
			if resp == nil || resp.StatusCode != tt.code {
				t.Fatalf("expected response with status %d", tt.code)
			}
		})
	}
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !HasCode(err, ErrCodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := New(Config{BaseURL: url})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !HasCode(err, ErrCodeConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestClient_Do_FullURL_IgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/direct" {
			t.Errorf("path = %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: "http://should-not-be-used.invalid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: srv.URL + "/direct"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_Bodies(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		wantCT string
		want   string
	}{
		{"string", "hello world", "text/plain", "hello world"},
		{"bytes", []byte("raw bytes"), "", "raw bytes"},
		{"reader", strings.NewReader("streamed"), "", "streamed"},
		{"json", map[string]int{"n": 1}, "application/json", `{"n":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != tc.wantCT {
					t.Errorf("Content-Type = %q, want %q", ct, tc.wantCT)
				}
				b, _ := io.ReadAll(r.Body)
				if string(b) != tc.want {
					t.Errorf("body = %q, want %q", b, tc.want)
				}
			}))
			defer srv.Close()

			c, _ := New(Config{BaseURL: srv.URL})
			if _, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: tc.body}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClient_Do_UnencodableBody(t *testing.T) {
	c, _ := New(Config{BaseURL: "http://localhost"})
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: map[string]any{"f": func() {}}})
	e, ok := AsError(err)
	if !ok || e.Code != ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClient_DoStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != MediaTypeEventStream {
			t.Errorf("Accept = %q, want %q", got, MediaTypeEventStream)
		}
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.WriteHeader(200)
		_, _ = fmt.Fprint(w, "data: hello\n\n")
		w.(http.Flusher).Flush()
		_, _ = fmt.Fprint(w, "data: world\n\n")
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Timeout: time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := c.DoStream(context.Background(), Request{Method: http.MethodPost, Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if !stream.IsEventStream() {
		t.Errorf("expected event stream, headers %v", stream.Headers)
	}
	body, err := io.ReadAll(stream.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "data: hello\n\ndata: world\n\n" {
		t.Errorf("body = %q", body)
	}
}

func TestClient_DoStream_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.DoStream(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !HasCode(err, ErrCodeAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	e, _ := AsError(err)
	if !e.IsStatus() || string(e.Body) != `{"error":"unauthorized"}` {
		t.Errorf("unexpected error detail %+v", e)
	}
}

func TestClient_DoStream_CancelClosesBody(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "data: first\n\n")
		w.(http.Flusher).Flush()
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := c.DoStream(ctx, Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	<-started
	buf := make([]byte, 64)
	if _, err := stream.Body.Read(buf); err != nil {
		t.Fatalf("first read: %v", err)
	}
	cancel()
	if _, err := io.ReadAll(stream.Body); err == nil {
		t.Error("expected read error after cancel")
	}
}

func TestClient_ResolveURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://h", "/completions", "http://h/completions"},
		{"http://h/", "completions", "http://h/completions"},
		{"http://h/v1/", "/completions", "http://h/v1/completions"},
		{"", "http://x/y", "http://x/y"},
		{"http://h", "https://other/z", "https://other/z"},
	}
	for _, tt := range tests {
		c, _ := New(Config{BaseURL: tt.base})
		if got := c.ResolveURL(tt.path); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestClient_BuildRequest(t *testing.T) {
	c, _ := New(Config{BaseURL: "http://h", Auth: BearerAuth("s")})
	req, err := c.BuildRequest(context.Background(), Request{Method: http.MethodPost, Path: "/completions", Body: map[string]string{"a": "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL.String() != "http://h/completions" {
		t.Errorf("url = %s", req.URL)
	}
	if req.Header.Get("Authorization") != "Bearer s" {
		t.Errorf("auth = %q", req.Header.Get("Authorization"))
	}
}

func TestClient_Unwrap(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Unwrap() == nil {
		t.Error("Unwrap should return non-nil http.Client")
	}
	if c.Config().Timeout != defaultTimeout {
		t.Errorf("timeout = %v", c.Config().Timeout)
	}
}

func TestClient_UserAgent(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		headers map[string]string
		want    string
	}{
		{"configured", Config{UserAgent: "llmaid/1.0"}, nil, "llmaid/1.0"},
		{"request wins", Config{UserAgent: "llmaid/1.0"}, map[string]string{"User-Agent": "custom"}, "custom"},
		{"default headers win", Config{UserAgent: "llmaid/1.0", Headers: map[string]string{"User-Agent": "hdr"}}, nil, "hdr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			req, err := c.BuildRequest(context.Background(), Request{Method: http.MethodGet, Path: "http://example.com/", Headers: tt.headers})
			if err != nil {
				t.Fatal(err)
			}
			if got := req.UserAgent(); got != tt.want {
				t.Errorf("User-Agent = %q, want %q", got, tt.want)
			}
		})
	}
}
