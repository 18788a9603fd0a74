package sse

import (
	"encoding/json"
	"strings"
)

// DoneSentinel is the data payload that terminates a completion stream.
const DoneSentinel = "[DONE]"

// Event represents a single server-sent event.
type Event struct {
	// Event is the SSE event type (from "event:" line). Empty for data-only events.
	Event string
	// Data is the event payload (from "data:" line(s)). Multi-line data is joined with newlines.
	Data string
	// ID is the event ID (from "id:" line).
	ID string
}

// IsDone reports whether the event is the terminal sentinel.
func (e *Event) IsDone() bool {
	return strings.TrimSpace(e.Data) == DoneSentinel
}

// Chunk is the JSON payload of one streamed completion event.
type Chunk struct {
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice is one entry of Chunk.Choices.
type ChunkChoice struct {
	Text         string  `json:"text"`
	Index        int     `json:"index,omitempty"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Text returns choices[0].text, or "" when there are no choices.
func (c *Chunk) Text() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Text
}

// parseEvent parses the lines of one event block (without the terminating
// blank line). hasData is false when the block carried no data field.
func parseEvent(block string) (ev Event, hasData bool) {
	for _, line := range strings.Split(block, "\n") {
		// Skip blank lines and comments
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseSSELine(line)
		switch field {
		case "data":
			if hasData {
				ev.Data += "\n" + value
			} else {
				ev.Data = value
				hasData = true
			}
		case "event":
			ev.Event = value
		case "id":
			ev.ID = value
		}
	}
	return ev, hasData
}

// parseSSELine parses a single SSE line into field and value.
func parseSSELine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	// A single leading space after the colon is not part of the value.
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}

// encodeChunk returns the JSON payload for a single token.
func encodeChunk(token string) ([]byte, error) {
	return json.Marshal(Chunk{Choices: []ChunkChoice{{Text: token}}})
}
