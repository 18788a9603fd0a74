package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/llmaid/errors"
	"github.com/kbukum/llmaid/internal/mockbackend"
)

// rawStream serves body as an event stream, flushing after each part.
func rawStream(t *testing.T, parts ...string) string {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range parts {
			_, _ = fmt.Fprint(w, p)
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestStream_Fixture(t *testing.T) {
	srv, url := startMock(t, mockbackend.Config{})
	c := newTestClient(t, url)
	ctx := context.Background()

	s, err := c.Stream(ctx, "Say hello")
	if err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	defer s.Close()

	var tokens []string
	for {
		tok, ok, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	if got := strings.Join(tokens, "|"); got != "Hello| world|!" {
		t.Errorf("tokens = %q", got)
	}

	// Exhausted streams stay exhausted.
	if _, ok, err := s.Next(ctx); ok || err != nil {
		t.Errorf("Next() after end = %v, %v", ok, err)
	}
	if got, _ := srv.LastRequest(); !got.Body.Stream {
		t.Error("request did not set stream")
	}
	if s.RequestID() == "" || s.RequestID() != mustLast(t, srv).RequestID {
		t.Errorf("RequestID() = %q", s.RequestID())
	}
}

func mustLast(t *testing.T, srv *mockbackend.Server) mockbackend.Received {
	t.Helper()
	r, ok := srv.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	return r
}

func TestStream_Tokens(t *testing.T) {
	_, url := startMock(t, mockbackend.Config{})
	c := newTestClient(t, url)
	ctx := context.Background()

	s, err := c.Stream(ctx, "hi")
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for item := range s.Tokens(ctx) {
		if item.Err != nil {
			t.Fatalf("item error: %v", item.Err)
		}
		b.WriteString(item.Value)
	}
	if b.String() != "Hello world!" {
		t.Errorf("text = %q", b.String())
	}
}

func TestStream_PreflightAndHTTPErrors(t *testing.T) {
	srv, url := startMock(t, mockbackend.Config{})
	ctx := context.Background()

	_, err := newTestClient(t, url).PromptTemplate("{{missing}}").Stream(ctx, "")
	if !errors.IsTemplate(err) {
		t.Errorf("template: error = %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Error("template error sent a request")
	}

	_, err = newTestClient(t, url).Stream(ctx, "hi", Model("bad-model"))
	e, ok := errors.As(err)
	if !ok || e.Kind != errors.KindProviderHTTP || e.StatusCode != http.StatusNotFound {
		t.Errorf("bad model: error = %v", err)
	}
}

func TestStream_EdgeCases(t *testing.T) {
	chunk := func(text string) string {
		return fmt.Sprintf("data: {\"choices\":[{\"text\":%q}]}\n\n", text)
	}

	tests := []struct {
		name       string
		parts      []string
		wantTokens []string
		wantErr    func(error) bool
	}{
		{
			name:       "event split across writes",
			parts:      []string{"data: {\"choi", "ces\":[{\"text\":\"Hel", "lo\"}]}\n", "\n", "data: [DONE]\n\n"},
			wantTokens: []string{"Hello"},
		},
		{
			name:       "empty token forwarded",
			parts:      []string{chunk("a"), chunk(""), chunk("b"), "data: [DONE]\n\n"},
			wantTokens: []string{"a", "", "b"},
		},
		{
			name:       "nothing after done",
			parts:      []string{chunk("a"), "data: [DONE]\n\n", chunk("late")},
			wantTokens: []string{"a"},
		},
		{
			name:       "ends without done",
			parts:      []string{chunk("a"), chunk("b")},
			wantTokens: []string{"a", "b"},
		},
		{
			name:       "crlf line endings",
			parts:      []string{"data: {\"choices\":[{\"text\":\"x\"}]}\r\n\r\n", "data: [DONE]\r\n\r\n"},
			wantTokens: []string{"x"},
		},
		{
			name:       "malformed event after tokens",
			parts:      []string{chunk("a"), "data: {not json}\n\n", chunk("b")},
			wantTokens: []string{"a"},
			wantErr:    errors.IsProvider,
		},
		{
			name:       "truncated final event",
			parts:      []string{chunk("a"), "data: {\"choices\":[{\"te"},
			wantTokens: []string{"a"},
			wantErr:    errors.IsProvider,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, rawStream(t, tt.parts...))
			ctx := context.Background()

			s, err := c.Stream(ctx, "hi")
			if err != nil {
				t.Fatalf("Stream() error: %v", err)
			}
			defer s.Close()

			var tokens []string
			var streamErr error
			for {
				tok, ok, err := s.Next(ctx)
				if err != nil {
					streamErr = err
					break
				}
				if !ok {
					break
				}
				tokens = append(tokens, tok)
			}

			if strings.Join(tokens, "|") != strings.Join(tt.wantTokens, "|") || len(tokens) != len(tt.wantTokens) {
				t.Errorf("tokens = %q, want %q", tokens, tt.wantTokens)
			}
			switch {
			case tt.wantErr == nil && streamErr != nil:
				t.Errorf("unexpected error: %v", streamErr)
			case tt.wantErr != nil && !tt.wantErr(streamErr):
				t.Errorf("error = %v, wrong kind", streamErr)
			}
			if tt.wantErr != nil {
				if _, _, again := s.Next(ctx); again == nil {
					t.Error("error is not sticky")
				}
			}
		})
	}
}

// blockingStream sends one token and holds the connection open until the
// client goes away, which it reports on the returned channel.
func blockingStream(t *testing.T) (string, <-chan struct{}) {
	t.Helper()
	gone := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "data: {\"choices\":[{\"text\":\"first\"}]}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(gone)
	}))
	t.Cleanup(ts.Close)
	return ts.URL, gone
}

func waitGone(t *testing.T, gone <-chan struct{}) {
	t.Helper()
	select {
	case <-gone:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not released")
	}
}

func TestStream_CancelReleasesConnection(t *testing.T) {
	url, gone := blockingStream(t)
	c := newTestClient(t, url)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := c.Stream(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}

	tok, ok, err := s.Next(ctx)
	if err != nil || !ok || tok != "first" {
		t.Fatalf("first Next() = %q, %v, %v", tok, ok, err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, ok, err = s.Next(ctx)
	if ok || !stderrors.Is(err, context.Canceled) {
		t.Errorf("Next() after cancel = %v, %v", ok, err)
	}
	waitGone(t, gone)
}

func TestStream_StreamContextCancel(t *testing.T) {
	url, gone := blockingStream(t)
	c := newTestClient(t, url)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := c.Stream(ctx, "hi")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	cancel()

	_, ok, err := s.Next(context.Background())
	if ok || !stderrors.Is(err, context.Canceled) {
		t.Errorf("Next() = %v, %v", ok, err)
	}
	waitGone(t, gone)
}

func TestStream_CloseReleasesConnection(t *testing.T) {
	url, gone := blockingStream(t)
	c := newTestClient(t, url)

	s, err := c.Stream(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	_ = s.Close()
	waitGone(t, gone)

	if _, ok, err := s.Next(context.Background()); ok || err != nil {
		t.Errorf("Next() after Close = %v, %v", ok, err)
	}
}

func TestStream_TokensStopsOnContext(t *testing.T) {
	url, gone := blockingStream(t)
	c := newTestClient(t, url)

	s, err := c.Stream(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Tokens(ctx)
	if first := <-ch; first.Value != "first" {
		t.Fatalf("first chunk = %+v", first)
	}
	cancel()
	for range ch {
	}
	waitGone(t, gone)
}

func TestStream_TokensCloseReleasesConnection(t *testing.T) {
	gone := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range []string{"first", "second", "third"} {
			_, _ = fmt.Fprintf(w, "data: {\"choices\":[{\"text\":%q}]}\n\n", tok)
		}
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(gone)
	}))
	t.Cleanup(ts.Close)

	s, err := newTestClient(t, ts.URL).Stream(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	ch := s.Tokens(context.Background())
	if first := <-ch; first.Value != "first" {
		t.Fatalf("first chunk = %+v", first)
	}

	// Stop reading without cancelling the context.
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	waitGone(t, gone)
	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after Close")
	}
}

func TestStream_Collect(t *testing.T) {
	_, url := startMock(t, mockbackend.Config{Tokens: []string{"a", "b", "c"}})
	s, err := newTestClient(t, url).Stream(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	text, err := s.Collect(context.Background())
	if err != nil || text != "abc" {
		t.Errorf("Collect() = %q, %v", text, err)
	}
}
