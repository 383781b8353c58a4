package docstore

import "strings"

// headingPathSep separates levels when a Document's HeadingPath is flattened
// for storage. Unlike ":" (used by the normalizer's in-text heading
// sentinels), this byte cannot appear in a heading, since headings are
// plain text extracted from wiki markup.
const headingPathSep = "\x1f"

func encodeHeadingPath(path []string) string {
	return strings.Join(path, headingPathSep)
}

func decodeHeadingPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, headingPathSep)
}
