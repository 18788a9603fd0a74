// Package mockbackend serves a deterministic OpenAI-compatible completions
// endpoint for tests, the check command and local development.
//
// POST /completions answers with the fixture text "Hello world!", or
// streams it as the tokens "Hello", " world", "!" followed by [DONE] when
// the request sets "stream": true. Requests must carry a bearer token
// (and the configured one, if any). Unknown models get a 404 in the
// provider error envelope.
//
//	srv := mockbackend.New(mockbackend.Config{}, log)
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop(ctx)
//	client, _ := llm.New(llm.WithBaseURL(srv.URL()), llm.WithSecret("test"), llm.WithModel(mockbackend.DefaultModel))
package mockbackend
