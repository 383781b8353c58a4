package splitter

import "strings"

// WordCount returns the number of whitespace-delimited words in s. Used by
// the ingestion pipeline's chunk filter, not by Split itself — per the
// splitter's contract, minimum-length filtering is the caller's concern.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
