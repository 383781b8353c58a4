// Package splitter implements the recursive text splitter: it breaks a
// normalized passage into chunks bounded by a maximum size and a maximum
// overlap, preferring to break on the most semantically meaningful
// separator available at each recursion level.
//
// Grounded on the splitting strategy shape found in
// aqua777-go-llamaindex/textsplitter (a priority list of separators
// recursed over), generalized to the exact merge/overlap algorithm
// spec.md §4.2 describes.
package splitter

import "strings"

// DefaultSeparators is the priority list tried in order: paragraph breaks,
// then line breaks, then spaces, then (empty string) individual characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// DefaultMinWords is the minimum word count a chunk must have to survive
// ingestion's post-split filter (not enforced by Split itself).
const DefaultMinWords = 15

// Options configures one Split call. A zero Separators slice means
// DefaultSeparators.
type Options struct {
	ChunkSize     int
	ChunkOverlap  int
	Separators    []string
	KeepSeparator bool
}

// Split breaks text into chunks of at most opts.ChunkSize characters, each
// carrying up to opts.ChunkOverlap characters from the tail of the previous
// chunk, preferring to break along the separator list in priority order.
func Split(text string, opts Options) []string {
	seps := opts.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	if opts.ChunkSize <= 0 {
		return splitEveryRune(text)
	}
	return splitRecursive(text, seps, opts)
}

func splitEveryRune(text string) []string {
	chunks := make([]string, 0, len(text))
	for _, r := range text {
		chunks = append(chunks, string(r))
	}
	return chunks
}

func splitRecursive(text string, seps []string, opts Options) []string {
	if len(text) == 0 {
		return nil
	}

	sep := seps[len(seps)-1]
	var nextSeps []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			nextSeps = seps[i+1:]
			break
		}
	}

	var segments []string
	if sep == "" {
		for _, r := range text {
			segments = append(segments, string(r))
		}
	} else if opts.KeepSeparator {
		segments = splitKeepingSeparator(text, sep)
	} else {
		segments = strings.Split(text, sep)
	}

	var merged []string
	var goodSegments []string
	for _, seg := range segments {
		if len(seg) > opts.ChunkSize && len(nextSeps) > 0 {
			merged = append(merged, mergeSegments(goodSegments, opts, sep)...)
			goodSegments = nil
			merged = append(merged, splitRecursive(seg, nextSeps, opts)...)
		} else {
			goodSegments = append(goodSegments, seg)
		}
	}
	merged = append(merged, mergeSegments(goodSegments, opts, sep)...)

	return merged
}

// splitKeepingSeparator splits text on sep but re-attaches sep to the end of
// every segment except the last, so downstream merging preserves it.
func splitKeepingSeparator(text, sep string) []string {
	parts := strings.Split(text, sep)
	segments := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			segments = append(segments, p+sep)
		} else if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// mergeSegments accumulates segments into chunks of at most opts.ChunkSize,
// joined by joiner (empty when KeepSeparator already re-attached it),
// carrying up to opts.ChunkOverlap trailing characters into the next chunk.
func mergeSegments(segments []string, opts Options, sep string) []string {
	if len(segments) == 0 {
		return nil
	}
	joiner := sep
	if opts.KeepSeparator {
		joiner = ""
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, joiner))
	}

	for _, seg := range segments {
		segLen := len(seg)
		if currentLen+segLen+lenIfJoined(len(current), joiner) > opts.ChunkSize && len(current) > 0 {
			flush()
			current, currentLen = carryOverlap(current, joiner, opts.ChunkOverlap)
		}
		currentLen += segLen + lenIfJoined(len(current), joiner)
		current = append(current, seg)
	}
	flush()

	return chunks
}

func lenIfJoined(existing int, joiner string) int {
	if existing == 0 {
		return 0
	}
	return len(joiner)
}

// carryOverlap keeps trailing segments from current whose combined length
// is at most overlap, to seed the next chunk.
func carryOverlap(current []string, joiner string, overlap int) ([]string, int) {
	if overlap <= 0 {
		return nil, 0
	}
	var kept []string
	total := 0
	for i := len(current) - 1; i >= 0; i-- {
		total += len(current[i])
		if len(kept) > 0 {
			total += len(joiner)
		}
		if total > overlap {
			break
		}
		kept = append([]string{current[i]}, kept...)
	}
	length := 0
	for i, s := range kept {
		length += len(s)
		if i > 0 {
			length += len(joiner)
		}
	}
	return kept, length
}
