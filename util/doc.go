// Package util provides small generic helpers shared by llmaid packages:
// pointer helpers for optional settings, secret masking for logs, and
// environment value parsing.
package util
