package normalize

import "strings"

// parseWikiLink parses the content between `[[` and `]]` (exclusive). It
// distinguishes Category and File/Image links (both namespace prefixes
// render to empty, like a bare image) from ordinary links, whose displayed
// text is either the part after the first `|` or, if there is none, the
// target itself.
func parseWikiLink(inner string) Node {
	target, display, hasDisplay := splitFirstPipe(inner)
	target = strings.TrimSpace(target)

	lower := strings.ToLower(target)
	switch {
	case strings.HasPrefix(lower, "category:"):
		return Node{Kind: KindCategory}
	case strings.HasPrefix(lower, "file:"), strings.HasPrefix(lower, "image:"):
		return Node{Kind: KindImage}
	}

	if hasDisplay {
		return Node{Kind: KindLink, Children: parseInline(display)}
	}
	return Node{Kind: KindLink, Children: parseInline(target)}
}
