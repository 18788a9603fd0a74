// Package sse decodes and writes the Server-Sent Events stream used by
// OpenAI-compatible completion endpoints.
//
// # Wire format
//
// Each event is one or more "data: " lines terminated by a blank line. The
// payload is a JSON object carrying choices[0].text, or the terminal
// sentinel [DONE]:
//
//	data: {"choices":[{"text":"Hello"}]}
//
//	data: [DONE]
//
// # Decoding
//
// Decoder is a plain state object with a feed/drain contract and no I/O,
// so it can be driven from any loop:
//
//	dec := sse.NewDecoder()
//	tokens, err := dec.Feed(chunk)
//	if dec.Done() { ... }
//
// TokenReader wraps a response body and pulls tokens one at a time:
//
//	r := sse.NewTokenReader(resp.Body)
//	defer r.Close()
//	for {
//		tok, err := r.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
//
// # Writing
//
// Writer emits the same format from an http.ResponseWriter and is used by
// the mock backend.
package sse
