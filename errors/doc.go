// Package errors defines the closed error taxonomy returned by llmaid.
//
// Every failure surfaced by the completion client is an [*Error] whose [Kind]
// is one of [KindConfig], [KindTemplate], [KindProviderHTTP] or [KindProvider].
// Callers switch on the kind instead of inspecting concrete types:
//
//	text, err := client.Completion(ctx, "hello")
//	if k, ok := errors.KindOf(err); ok {
//	    switch k {
//	    case errors.KindConfig, errors.KindTemplate:
//	        // caller mistake, nothing was sent
//	    case errors.KindProviderHTTP:
//	        // inspect StatusCode / Body
//	    case errors.KindProvider:
//	        // transport failure or malformed response
//	    }
//	}
package errors
