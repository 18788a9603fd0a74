// Package httpclient is the transport used by the completion client: a thin
// HTTP client with bearer authentication, typed status errors and streaming
// responses.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://127.0.0.1:17434",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth("my-token"),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/completions",
//	    Body:   payload,
//	})
//
// Non-2xx responses return an *Error carrying the status code and raw body.
// The client never retries.
//
// # Streaming
//
//	stream, err := client.DoStream(ctx, req)
//	if err != nil { ... }
//	defer stream.Close()
//	// read stream.Body incrementally
//
// Streaming requests are not bound by Config.Timeout; cancel the context to
// abort them.
package httpclient
