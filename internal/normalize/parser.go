package normalize

import (
	"strings"
)

// Parse turns raw MediaWiki markup into a node tree, depth-first in
// document order. It never returns an error: malformed or partial markup
// constructs degrade to plain text rather than aborting the parse, since a
// single article's idiosyncrasies must never take down the whole page.
func Parse(markup string) []Node {
	return parseBlocks(markup)
}

// parseBlocks splits markup into lines and groups them into block-level
// constructs: headings, tables, lists, definition lists, paragraph breaks,
// and ordinary paragraphs (which are themselves inline-parsed).
func parseBlocks(markup string) []Node {
	lines := strings.Split(markup, "\n")
	var nodes []Node

	var paragraph []string
	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := strings.Join(paragraph, "\n")
		paragraph = paragraph[:0]
		nodes = append(nodes, parseInline(text)...)
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushParagraph()
			nodes = append(nodes, Node{Kind: KindParagraphBreak})

		case isHeadingLine(trimmed):
			flushParagraph()
			level, content := parseHeadingLine(trimmed)
			nodes = append(nodes, Node{Kind: KindHeading, Level: level, Children: parseInline(content)})

		case strings.HasPrefix(trimmed, "{|"):
			flushParagraph()
			end := findTableEnd(lines, i)
			nodes = append(nodes, parseTable(lines[i:end+1]))
			i = end

		case strings.HasPrefix(trimmed, "*"):
			flushParagraph()
			end := i
			var items []ListItem
			for end < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[end]), "*") {
				item := strings.TrimPrefix(strings.TrimSpace(lines[end]), "*")
				items = append(items, ListItem{Children: parseInline(strings.TrimSpace(item))})
				end++
			}
			nodes = append(nodes, Node{Kind: KindUnorderedList, ListItems: items})
			i = end - 1

		case strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "#REDIRECT"):
			flushParagraph()
			end := i
			var items []ListItem
			for end < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[end]), "#") &&
				!strings.HasPrefix(strings.TrimSpace(lines[end]), "#REDIRECT") {
				item := strings.TrimPrefix(strings.TrimSpace(lines[end]), "#")
				items = append(items, ListItem{Children: parseInline(strings.TrimSpace(item))})
				end++
			}
			nodes = append(nodes, Node{Kind: KindOrderedList, ListItems: items})
			i = end - 1

		case strings.HasPrefix(strings.ToUpper(trimmed), "#REDIRECT"):
			flushParagraph()
			nodes = append(nodes, Node{Kind: KindRedirect})

		case strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, ":"):
			flushParagraph()
			end := i
			var items []DefListItem
			for end < len(lines) {
				t := strings.TrimSpace(lines[end])
				if strings.HasPrefix(t, ";") {
					term := strings.TrimPrefix(t, ";")
					def := ""
					if idx := strings.Index(term, ":"); idx >= 0 {
						def = term[idx+1:]
						term = term[:idx]
					}
					items = append(items, DefListItem{
						Term:       parseInline(strings.TrimSpace(term)),
						Definition: parseInline(strings.TrimSpace(def)),
					})
					end++
				} else if strings.HasPrefix(t, ":") {
					def := strings.TrimPrefix(t, ":")
					items = append(items, DefListItem{Definition: parseInline(strings.TrimSpace(def))})
					end++
				} else {
					break
				}
			}
			nodes = append(nodes, Node{Kind: KindDefinitionList, DefItems: items})
			i = end - 1

		default:
			paragraph = append(paragraph, line)
		}
	}
	flushParagraph()

	return nodes
}

func isHeadingLine(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "=") || !strings.HasSuffix(trimmed, "=") {
		return false
	}
	level, _ := parseHeadingLine(trimmed)
	return level > 0
}

// parseHeadingLine returns the heading level (count of leading `=`, 1-6) and
// its inner, untrimmed-of-markup content.
func parseHeadingLine(trimmed string) (int, string) {
	level := 0
	for level < len(trimmed) && trimmed[level] == '=' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, ""
	}
	rest := trimmed[level:]
	closing := 0
	for closing < len(rest) && rest[len(rest)-1-closing] == '=' {
		closing++
	}
	if closing < level {
		return 0, ""
	}
	content := rest[:len(rest)-closing]
	return level, strings.TrimSpace(content)
}

func findTableEnd(lines []string, start int) int {
	depth := 0
	for i := start; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if strings.HasPrefix(t, "{|") {
			depth++
		}
		if strings.HasPrefix(t, "|}") {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(lines) - 1
}
