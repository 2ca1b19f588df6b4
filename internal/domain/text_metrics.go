package domain

import "strings"

// CountWords approximates the token cost of text by counting the segments
// produced by splitting on single spaces. Runs of spaces produce empty
// segments that are still counted, and tabs or newlines do not separate.
func CountWords(text string) int {
	return len(strings.Split(text, " "))
}
