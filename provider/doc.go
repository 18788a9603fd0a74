// Package provider defines the pull-based Iterator shared by streaming
// providers, plus helpers to drain one, visit it, or adapt it to a channel.
//
//	stream, err := client.Stream(ctx, "Count to three")
//	if err != nil { ... }
//	err = provider.ForEach(ctx, stream, func(tok string) error {
//		fmt.Print(tok)
//		return nil
//	})
package provider
