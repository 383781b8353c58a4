package normalize

import "strings"

// parseInline scans s left to right, recognizing the inline wikitext
// constructs (bold/italic, templates, links, external links, comments,
// tags, magic words, character entities) and emitting everything else as
// Text nodes. A lone "\n" is kept as its own Text node so the renderer can
// drop it, matching how a single embedded newline (as opposed to a
// paragraph break) carries no meaning in wikitext.
func parseInline(s string) []Node {
	var nodes []Node
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, Node{Kind: KindText, Text: buf.String()})
			buf.Reset()
		}
	}

	i := 0
	n := len(s)
	for i < n {
		c := s[i]

		switch {
		case c == '\n':
			flush()
			nodes = append(nodes, Node{Kind: KindText, Text: "\n"})
			i++

		case strings.HasPrefix(s[i:], "<!--"):
			flush()
			end := strings.Index(s[i:], "-->")
			if end < 0 {
				nodes = append(nodes, Node{Kind: KindComment})
				i = n
			} else {
				nodes = append(nodes, Node{Kind: KindComment})
				i += end + len("-->")
			}

		case strings.HasPrefix(s[i:], "{{{"):
			flush()
			end := findMatchingClose(s, i, "{{{", "}}}")
			if end < 0 {
				buf.WriteString(s[i : i+3])
				i += 3
				continue
			}
			inner := s[i+3 : end]
			name, def, hasDef := splitFirstPipe(inner)
			param := Node{Kind: KindParameter, ParamName: parseInline(name), HasDefault: hasDef}
			if hasDef {
				param.ParamDefault = parseInline(def)
			}
			nodes = append(nodes, param)
			i = end + 3

		case strings.HasPrefix(s[i:], "{{"):
			flush()
			end := findMatchingClose(s, i, "{{", "}}")
			if end < 0 {
				buf.WriteString(s[i : i+2])
				i += 2
				continue
			}
			nodes = append(nodes, parseTemplate(s[i+2:end]))
			i = end + 2

		case strings.HasPrefix(s[i:], "[["):
			flush()
			end := findMatchingClose(s, i, "[[", "]]")
			if end < 0 {
				buf.WriteString(s[i : i+2])
				i += 2
				continue
			}
			nodes = append(nodes, parseWikiLink(s[i+2:end]))
			i = end + 2

		case c == '[':
			flush()
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				buf.WriteByte(c)
				i++
				continue
			}
			inner := s[i+1 : i+end]
			nodes = append(nodes, Node{Kind: KindExternalLink, Children: parseInline(inner)})
			i += end + 1

		case strings.HasPrefix(s[i:], "'''''"):
			flush()
			end := strings.Index(s[i+5:], "'''''")
			if end < 0 {
				buf.WriteString(s[i : i+5])
				i += 5
				continue
			}
			nodes = append(nodes, Node{Kind: KindBoldItalic})
			i += 5 + end + 5

		case strings.HasPrefix(s[i:], "'''"):
			flush()
			end := strings.Index(s[i+3:], "'''")
			if end < 0 {
				buf.WriteString(s[i : i+3])
				i += 3
				continue
			}
			nodes = append(nodes, Node{Kind: KindBold})
			i += 3 + end + 3

		case strings.HasPrefix(s[i:], "''"):
			flush()
			end := strings.Index(s[i+2:], "''")
			if end < 0 {
				buf.WriteString(s[i : i+2])
				i += 2
				continue
			}
			nodes = append(nodes, Node{Kind: KindItalic})
			i += 2 + end + 2

		case strings.HasPrefix(s[i:], "----"):
			flush()
			nodes = append(nodes, Node{Kind: KindHorizontalDivider})
			i += 4

		case strings.HasPrefix(s[i:], "__") && hasMagicWordClose(s, i):
			flush()
			end := strings.Index(s[i+2:], "__")
			nodes = append(nodes, Node{Kind: KindMagicWord})
			i += 2 + end + 2

		case c == '<':
			flush()
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				buf.WriteByte(c)
				i++
				continue
			}
			// Any HTML-like tag (<ref>, <br/>, <gallery>...</gallery>, ...)
			// renders as nothing, so we only need to skip past it.
			tagBody := s[i+1 : i+end]
			if !strings.HasSuffix(tagBody, "/") && !strings.HasPrefix(tagBody, "/") && len(strings.Fields(tagBody)) > 0 {
				closeTag := "</" + strings.Fields(tagBody)[0] + ">"
				if closeIdx := strings.Index(s[i+end+1:], closeTag); closeIdx >= 0 {
					nodes = append(nodes, Node{Kind: KindTag})
					i += end + 1 + closeIdx + len(closeTag)
					continue
				}
			}
			nodes = append(nodes, Node{Kind: KindTag})
			i += end + 1

		case c == '&':
			end := strings.IndexByte(s[i:], ';')
			if end > 0 && end < 10 {
				if ch, ok := decodeEntity(s[i+1 : i+end]); ok {
					flush()
					nodes = append(nodes, Node{Kind: KindCharacterEntity, Text: ch})
					i += end + 1
					continue
				}
			}
			buf.WriteByte(c)
			i++

		default:
			buf.WriteByte(c)
			i++
		}
	}
	flush()
	return nodes
}

func hasMagicWordClose(s string, i int) bool {
	idx := strings.Index(s[i+2:], "__")
	if idx < 0 {
		return false
	}
	word := s[i+2 : i+2+idx]
	return word == strings.ToUpper(word) && !strings.ContainsAny(word, " \n")
}

// findMatchingClose finds the index of the closer matching the opener at s[start:],
// counting nested openers of the same kind, and returns -1 if unmatched.
func findMatchingClose(s string, start int, opener, closer string) int {
	depth := 0
	i := start
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], opener):
			depth++
			i += len(opener)
		case strings.HasPrefix(s[i:], closer):
			depth--
			if depth == 0 {
				return i
			}
			i += len(closer)
		default:
			i++
		}
	}
	return -1
}

// splitTopLevel splits s on sep, only at nesting depth zero with respect to
// {{ }}, [[ ]], and {{{ }}}.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{") || strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case strings.HasPrefix(s[i:], "}}") || strings.HasPrefix(s[i:], "]]"):
			if depth > 0 {
				depth--
			}
			i++
		case s[i] == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func splitFirstPipe(s string) (before, after string, hasAfter bool) {
	parts := splitTopLevel(s, '|')
	if len(parts) == 1 {
		return parts[0], "", false
	}
	return parts[0], strings.Join(parts[1:], "|"), true
}
