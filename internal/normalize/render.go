package normalize

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// stopSections names the level-2 headings after which the rest of an
// article (references, bibliographies, and similar back matter) is dropped.
var stopSections = map[string]bool{
	"References":           true,
	"Bibliography":         true,
	"See also":             true,
	"Further reading":      true,
	"External links":       true,
	"Notes and references": true,
}

// ErrMarkupProcessing wraps any error encountered while normalizing a page's
// markup. The current implementation never produces one on its own (a
// malformed construct degrades to text rather than erroring), but callers
// treat the return type as fallible since a future node kind could fail.
var ErrMarkupProcessing = errors.Base("markup processing error")

// Normalize parses markup and renders it into a single flat string with
// inline heading-path sentinels, trimmed of leading/trailing whitespace.
func Normalize(markup string) (string, errors.E) {
	nodes := Parse(markup)
	var heading []string
	var buf strings.Builder
	renderSiblings(&heading, nodes, &buf)
	return strings.TrimSpace(buf.String()), nil
}

// renderSiblings renders nodes in order, mutating heading (the running
// heading stack) as it encounters Heading nodes, and stops entirely — not
// just skipping the one heading — the moment it finds a level-2 stop
// section, mirroring the original processor's early `break`.
func renderSiblings(heading *[]string, nodes []Node, buf *strings.Builder) {
	for _, node := range nodes {
		if node.Kind == KindHeading && node.Level == 2 {
			var probe strings.Builder
			renderSiblings(&[]string{}, node.Children, &probe)
			if stopSections[strings.TrimSpace(probe.String())] {
				return
			}
		}
		renderNode(heading, node, buf)
	}
}

func renderNode(heading *[]string, node Node, buf *strings.Builder) {
	switch node.Kind {
	case KindBold, KindBoldItalic, KindItalic, KindComment, KindHorizontalDivider,
		KindMagicWord, KindCategory, KindRedirect, KindTag, KindImage:
		// Rendered as nothing: these carry no retrievable content.

	case KindParagraphBreak:
		buf.WriteString("\n\n")

	case KindHeading:
		var inner strings.Builder
		renderSiblings(heading, node.Children, &inner)
		buf.WriteString(adjustHeadings(node.Level, heading, inner.String()))

	case KindExternalLink:
		var inner strings.Builder
		renderSiblings(heading, node.Children, &inner)
		fields := strings.Fields(inner.String())
		if len(fields) > 1 {
			buf.WriteString(strings.Join(fields[1:], " "))
		}

	case KindPreformatted:
		renderSiblings(heading, node.Children, buf)

	case KindCharacterEntity:
		buf.WriteString(node.Text)

	case KindLink:
		renderSiblings(heading, node.Children, buf)

	case KindParameter:
		var name, def strings.Builder
		renderSiblings(heading, node.ParamName, &name)
		if node.HasDefault {
			renderSiblings(heading, node.ParamDefault, &def)
		}
		buf.WriteString(name.String())
		buf.WriteString(": ")
		buf.WriteString(def.String())

	case KindDefinitionList:
		renderDefinitionList(heading, node.DefItems, buf)

	case KindUnorderedList:
		renderUnorderedList(heading, node.ListItems, buf)

	case KindOrderedList:
		renderOrderedList(heading, node.ListItems, buf)

	case KindTable:
		renderTable(heading, node, buf)

	case KindTemplate:
		renderTemplate(heading, node, buf)

	case KindText:
		if node.Text != "\n" {
			buf.WriteString(node.Text)
		}
	}
}

// adjustHeadings extends or truncates the heading stack to level, replaces
// its top with newHeading, and returns the sentinel-wrapped, colon-joined
// path. It always leaves the stack with exactly `level` entries.
func adjustHeadings(level int, heading *[]string, newHeading string) string {
	h := *heading
	if level > len(h) {
		for len(h) < level {
			h = append(h, "")
		}
	} else if level < len(h) {
		h = h[:level]
	}
	if len(h) == 0 {
		h = append(h, newHeading)
	} else {
		h[len(h)-1] = newHeading
	}
	*heading = h
	return fmt.Sprintf("%s%s%s", document.HeadingStart, strings.Join(h, ":"), document.HeadingEnd)
}

func renderUnorderedList(heading *[]string, items []ListItem, buf *strings.Builder) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		var inner strings.Builder
		renderSiblings(heading, item.Children, &inner)
		parts = append(parts, " - "+inner.String())
	}
	buf.WriteString(strings.Join(parts, "\n"))
}

func renderOrderedList(heading *[]string, items []ListItem, buf *strings.Builder) {
	parts := make([]string, 0, len(items))
	for i, item := range items {
		var inner strings.Builder
		renderSiblings(heading, item.Children, &inner)
		parts = append(parts, fmt.Sprintf(" %d. %s", i, inner.String()))
	}
	buf.WriteString(strings.Join(parts, "\n"))
}

func renderDefinitionList(heading *[]string, items []DefListItem, buf *strings.Builder) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		var term, def strings.Builder
		renderSiblings(heading, item.Term, &term)
		renderSiblings(heading, item.Definition, &def)
		if term.Len() > 0 {
			parts = append(parts, term.String()+": "+def.String())
		} else {
			parts = append(parts, def.String())
		}
	}
	buf.WriteString(strings.Join(parts, "\n"))
}

func renderTemplate(heading *[]string, node Node, buf *strings.Builder) {
	var name strings.Builder
	renderSiblings(heading, node.TemplateName, &name)
	lower := strings.ToLower(name.String())

	switch {
	case strings.Contains(lower, "refn"), strings.Contains(lower, "linktext"):
		renderTemplateParams(heading, node.Parameters, buf)
	case strings.Contains(lower, "lang") && len(node.Parameters) > 0:
		renderTemplateParams(heading, node.Parameters[1:], buf)
	}
}

func renderTemplateParams(heading *[]string, params []Parameter, buf *strings.Builder) {
	for _, p := range params {
		renderSiblings(heading, p.Value, buf)
	}
}
