package normalize

import "strings"

// parseTemplate parses the content between `{{` and `}}` (exclusive) into a
// KindTemplate node: the name is everything before the first top-level `|`,
// and each subsequent top-level-`|`-delimited segment is a Parameter,
// either positional or named (`name=value`, split at the first top-level
// `=`).
func parseTemplate(inner string) Node {
	parts := splitTopLevel(inner, '|')
	name := parseInline(strings.TrimSpace(parts[0]))

	var params []Parameter
	for _, p := range parts[1:] {
		if eq := indexTopLevelEquals(p); eq >= 0 {
			params = append(params, Parameter{
				Name:    parseInline(strings.TrimSpace(p[:eq])),
				Value:   parseInline(p[eq+1:]),
				HasName: true,
			})
		} else {
			params = append(params, Parameter{Value: parseInline(p)})
		}
	}

	return Node{Kind: KindTemplate, TemplateName: name, Parameters: params}
}

func indexTopLevelEquals(s string) int {
	depth := 0
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
		case s[i] == '=' && depth == 0:
			return i
		}
	}
	return -1
}
