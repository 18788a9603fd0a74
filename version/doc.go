// Package version reports the llmaid build version.
//
// The version is set at link time and falls back to the module build info
// embedded by the Go toolchain:
//
//	go build -ldflags "-X github.com/kbukum/llmaid/version.Version=1.2.0" ./cmd/llmaid
package version
