// Package llm is a small client for OpenAI-compatible text completion
// endpoints (POST {base_url}/completions).
//
// A Client resolves its configuration per call from four layers: call
// options, client options, LLMAID_* environment variables and built-in
// defaults. A client bound to a template renders it before each call.
//
// # Usage
//
//	client, err := llm.New(llm.WithModel("gpt-3.5-turbo-instruct"))
//	if err != nil { ... }
//
//	text, err := client.Completion(ctx, "Say hello")
//
//	tmpl := client.PromptTemplate("You are a {{role}}. Answer in {{n}} words:")
//	text, err = tmpl.Completion(ctx, "2+2?",
//	    llm.Vars(map[string]string{"role": "tutor", "n": "5"}))
//
// # Async and streaming
//
//	res := client.ACompletion(ctx, "Say hello")
//	text, err := llm.Await(ctx, res)
//
//	stream, err := client.Stream(ctx, "Count to five")
//	if err != nil { ... }
//	defer stream.Close()
//	for {
//		tok, ok, err := stream.Next(ctx)
//		if err != nil || !ok {
//			break
//		}
//		fmt.Print(tok)
//	}
//
// All three shapes share one preparation step, so they resolve settings
// and render templates identically. Errors are *errors.Error values whose
// Kind tells configuration, template, HTTP status and protocol failures
// apart. The client never retries.
package llm
