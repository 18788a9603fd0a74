package util

import "strings"

// MaskSecret hides a credential for safe display, keeping only the last
// visibleSuffix characters. Short secrets are fully masked.
func MaskSecret(s string, visibleSuffix int) string {
	if len(s) <= visibleSuffix {
		return "***"
	}
	return strings.Repeat("*", len(s)-visibleSuffix) + s[len(s)-visibleSuffix:]
}
