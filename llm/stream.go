package llm

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/kbukum/llmaid/logger"
	"github.com/kbukum/llmaid/observability"
	"github.com/kbukum/llmaid/provider"
	"github.com/kbukum/llmaid/sse"
)

// Stream sends prompt with streaming enabled. Configuration, template and
// HTTP status errors are returned here, before any token. The caller must
// drain or Close the returned stream.
func (c *Client) Stream(ctx context.Context, prompt string, opts ...CallOption) (*TokenStream, error) {
	req, err := c.prepare(prompt, opts, true)
	if err != nil {
		c.preflightFailed(ctx, observability.ModeStream, err)
		return nil, err
	}

	ctx, call := observability.StartCall(ctx, c.tracer, c.metrics, observability.SpanStream, observability.ModeStream, req.RequestID, req.Settings.Model)
	log := c.callLogger(req, observability.ModeStream)
	log.Debug("stream request", logger.Fields("prompt_chars", len(req.Body.Prompt)))

	resp, err := c.transport.DoStream(ctx, req.httpRequest())
	if err != nil {
		err = translateError(err)
		call.End(err)
		log.Warn("stream failed", logger.ErrorFields("stream", err))
		return nil, err
	}
	if !resp.IsEventStream() {
		log.Debug("stream response is not text/event-stream", logger.Fields("content_type", resp.ContentType()))
	}

	return &TokenStream{
		ctx:       ctx,
		reader:    sse.NewTokenReader(resp.Body),
		call:      call,
		log:       log,
		requestID: req.RequestID,
		done:      make(chan struct{}),
	}, nil
}

var (
	_ provider.Iterator[string] = (*TokenStream)(nil)
	_ provider.Stopper          = (*TokenStream)(nil)
)

// TokenStream yields the tokens of one streaming completion in order.
//
// Next and Close may be called from different goroutines; Next itself must
// not be called concurrently.
type TokenStream struct {
	ctx       context.Context
	reader    *sse.TokenReader
	call      *observability.Call
	log       *logger.Logger
	requestID string

	mu     sync.Mutex
	closed bool
	err    error
	done   chan struct{}
}

// RequestID returns the ID sent with the request.
func (s *TokenStream) RequestID() string {
	return s.requestID
}

// Next returns the next token. ok is false once the stream has ended, in
// which case err is nil for a complete stream and the failure otherwise.
// Tokens may be empty strings. Cancelling ctx, or the context given to
// Stream, closes the connection and makes Next return the context error.
func (s *TokenStream) Next(ctx context.Context) (token string, ok bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if closed, err := s.state(); closed {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		s.finish(err)
		return "", false, err
	}

	stop := context.AfterFunc(ctx, func() { s.finish(ctx.Err()) })
	tok, err := s.reader.Next()
	stop()

	switch {
	case err == nil:
		s.call.AddTokens(1)
		return tok, true, nil
	case err == io.EOF:
		s.finish(nil)
		_, err = s.state()
		return "", false, err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else if ctxErr := s.ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	s.finish(err)
	_, err = s.state()
	return "", false, err
}

// Close releases the connection. Calling Close after the stream ended, or
// more than once, is harmless.
func (s *TokenStream) Close() error {
	s.finish(nil)
	return nil
}

// Done is closed once the stream has ended or been closed.
func (s *TokenStream) Done() <-chan struct{} {
	return s.done
}

// Tokens delivers the stream on a channel. A failure is sent as the last
// item. The channel is closed when the stream ends, ctx is done, or Close
// is called, and the connection is released in every case. A consumer that
// stops reading early must cancel ctx or call Close.
func (s *TokenStream) Tokens(ctx context.Context) <-chan provider.Item[string] {
	return provider.Channel[string](ctx, s)
}

// Collect reads the stream to the end and returns the concatenated text.
// On failure the text received so far is returned with the error.
func (s *TokenStream) Collect(ctx context.Context) (string, error) {
	var b strings.Builder
	err := provider.ForEach[string](ctx, s, func(tok string) error {
		b.WriteString(tok)
		return nil
	})
	return b.String(), err
}

func (s *TokenStream) state() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed, s.err
}

// finish closes the body and ends the call. Only the first call counts.
func (s *TokenStream) finish(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.done)
	s.mu.Unlock()

	_ = s.reader.Close()
	s.call.End(err)
	if err != nil {
		s.log.Warn("stream failed", logger.MergeWithError(logger.Fields(logger.FieldTokens, s.call.Tokens()), err))
		return
	}
	s.log.Debug("stream finished", logger.Fields(
		logger.FieldTokens, s.call.Tokens(),
		logger.FieldDuration, s.call.Duration().Milliseconds(),
	))
}
