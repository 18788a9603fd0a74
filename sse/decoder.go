package sse

import (
	"bytes"
	"encoding/json"

	"github.com/kbukum/llmaid/errors"
)

var eventTerminator = []byte("\n\n")

// Decoder turns raw stream bytes into completion tokens.
//
// Bytes may be split anywhere across calls to Feed; incomplete trailing data
// is buffered until its terminating blank line arrives. Once the [DONE]
// sentinel has been seen, Done reports true and further input is ignored.
// A Decoder is not safe for concurrent use; each stream owns its own.
type Decoder struct {
	buf  []byte
	done bool
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk and returns the tokens of every event it completes, in
// arrival order. An event whose text is empty or missing yields "".
//
// A data payload that is not valid JSON fails with a KindProvider error
// carrying the raw event. Tokens decoded before the bad event are returned
// alongside the error.
func (d *Decoder) Feed(chunk []byte) ([]string, error) {
	if d.done {
		return nil, nil
	}
	if bytes.IndexByte(chunk, '\r') >= 0 {
		chunk = bytes.ReplaceAll(chunk, []byte("\r"), nil)
	}
	d.buf = append(d.buf, chunk...)

	var tokens []string
	for !d.done {
		idx := bytes.Index(d.buf, eventTerminator)
		if idx < 0 {
			break
		}
		block := string(d.buf[:idx])
		d.buf = d.buf[idx+len(eventTerminator):]

		token, ok, err := d.decode(block)
		if err != nil {
			return tokens, err
		}
		if ok {
			tokens = append(tokens, token)
		}
	}
	if d.done {
		d.buf = nil
	}
	return tokens, nil
}

// Done reports whether the terminal sentinel has been decoded.
func (d *Decoder) Done() bool {
	return d.done
}

// Buffered returns the number of bytes held for an incomplete event.
func (d *Decoder) Buffered() int {
	return len(bytes.TrimLeft(d.buf, "\n"))
}

// Flush decodes whatever is buffered as a final event, for streams whose
// last event is missing its terminating blank line. A buffered payload that
// does not decode is reported as a truncated stream.
func (d *Decoder) Flush() ([]string, error) {
	if d.done || d.Buffered() == 0 {
		return nil, nil
	}
	block := string(bytes.Trim(d.buf, "\n"))
	d.buf = nil

	token, ok, err := d.decode(block)
	if err != nil {
		return nil, errors.Provider("stream ended inside an event", block, err)
	}
	if !ok {
		return nil, nil
	}
	return []string{token}, nil
}

// Reset clears buffered data and the done flag.
func (d *Decoder) Reset() {
	d.buf = nil
	d.done = false
}

func (d *Decoder) decode(block string) (string, bool, error) {
	ev, hasData := parseEvent(block)
	if !hasData {
		return "", false, nil
	}
	if ev.IsDone() {
		d.done = true
		return "", false, nil
	}

	var c Chunk
	if err := json.Unmarshal([]byte(ev.Data), &c); err != nil {
		return "", false, errors.Provider("malformed stream event", block, err)
	}
	return c.Text(), true, nil
}
