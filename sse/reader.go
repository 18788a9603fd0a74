package sse

import (
	"io"

	"github.com/kbukum/llmaid/errors"
)

// readChunkSize is the number of bytes read from the body per Feed.
const readChunkSize = 4096

// TokenReader pulls completion tokens from a streaming response body.
type TokenReader struct {
	body    io.ReadCloser
	dec     *Decoder
	pending []string
	buf     []byte
	err     error
}

// NewTokenReader creates a TokenReader over body. The caller must Close it.
func NewTokenReader(body io.ReadCloser) *TokenReader {
	return &TokenReader{
		body: body,
		dec:  NewDecoder(),
		buf:  make([]byte, readChunkSize),
	}
}

// Next returns the next token. It returns io.EOF once the [DONE] sentinel is
// decoded or the body ends. A body that ends in the middle of an event
// fails with a KindProvider error. After any error, Next keeps
// returning that error.
func (r *TokenReader) Next() (string, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return "", r.err
		}
		if r.dec.Done() {
			r.err = io.EOF
			continue
		}
		r.fill()
	}
	tok := r.pending[0]
	r.pending = r.pending[1:]
	return tok, nil
}

// fill reads one chunk from the body into the decoder.
func (r *TokenReader) fill() {
	n, readErr := r.body.Read(r.buf)
	if n > 0 {
		tokens, err := r.dec.Feed(r.buf[:n])
		r.pending = append(r.pending, tokens...)
		if err != nil {
			r.err = err
			return
		}
	}
	switch {
	case readErr == nil:
	case readErr == io.EOF:
		tokens, err := r.dec.Flush()
		r.pending = append(r.pending, tokens...)
		if err != nil {
			r.err = err
			return
		}
		r.err = io.EOF
	default:
		r.err = errors.Provider("stream read failed", "", readErr)
	}
}

// Done reports whether the terminal sentinel has been seen.
func (r *TokenReader) Done() bool {
	return r.dec.Done()
}

// Close releases the underlying stream.
func (r *TokenReader) Close() error {
	return r.body.Close()
}
