package sse

import (
	"fmt"
	"net/http"
	"time"
)

// Writer writes completion events to an HTTP response.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares w for streaming: it checks flush support, disables the
// write deadline and sets the SSE headers. It fails when w cannot flush.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	// Check SSE support (requires http.Flusher interface)
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("sse: streaming not supported by %T", w)
	}

	// Streams outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &Writer{w: w, flusher: flusher}, nil
}

// Data writes one data-only event and flushes it.
func (sw *Writer) Data(payload []byte) error {
	if _, err := fmt.Fprintf(sw.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

// Token writes one completion chunk carrying token.
func (sw *Writer) Token(token string) error {
	payload, err := encodeChunk(token)
	if err != nil {
		return err
	}
	return sw.Data(payload)
}

// Done writes the terminal sentinel.
func (sw *Writer) Done() error {
	return sw.Data([]byte(DoneSentinel))
}

// Comment writes a keep-alive comment line.
func (sw *Writer) Comment(text string) error {
	if _, err := fmt.Fprintf(sw.w, ": %s\n\n", text); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}
