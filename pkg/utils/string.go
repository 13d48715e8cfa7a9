package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen runes, appending "..." when cut.
// Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
