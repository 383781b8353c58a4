// Package normalize implements the markup normalizer: it parses MediaWiki
// source text into a node tree and walks it depth-first into a single flat
// string, embedding a heading path between sentinels at each section
// boundary and dropping trailing boilerplate sections.
//
// No wikitext-parsing library exists in the example corpus this module was
// grounded on (the nearest relative, peer-db's internal/wikipedia, parses
// already-rendered HTML from the Wikipedia REST API, not raw wikitext), so
// the parser and renderer below are hand-written against the standard
// library only.
package normalize

// Kind tags the variant of a Node, mirroring the fixed set of MediaWiki
// constructs the normalizer understands.
type Kind int

const (
	KindText Kind = iota
	KindBold
	KindItalic
	KindBoldItalic
	KindComment
	KindHorizontalDivider
	KindMagicWord
	KindCategory
	KindRedirect
	KindTag
	KindImage
	KindParagraphBreak
	KindHeading
	KindExternalLink
	KindPreformatted
	KindCharacterEntity
	KindLink
	KindParameter
	KindDefinitionList
	KindUnorderedList
	KindOrderedList
	KindTable
	KindTemplate
)

// Node is one element of the parsed wikitext tree. Only the fields relevant
// to its Kind are populated.
type Node struct {
	Kind Kind

	Text  string // KindText, KindCharacterEntity
	Level int    // KindHeading

	Children []Node // KindHeading, KindExternalLink, KindPreformatted, KindLink (display text)

	ListItems []ListItem     // KindUnorderedList, KindOrderedList
	DefItems  []DefListItem  // KindDefinitionList
	Captions  []TableCaption // KindTable
	Rows      []TableRow     // KindTable

	TemplateName []Node      // KindTemplate
	Parameters   []Parameter // KindTemplate

	ParamName    []Node // KindParameter
	ParamDefault []Node // KindParameter
	HasDefault   bool   // KindParameter
}

// ListItem is one entry of an ordered or unordered list.
type ListItem struct {
	Children []Node
}

// DefListItem is one term/definition pair of a definition list.
type DefListItem struct {
	Term       []Node
	Definition []Node
}

// Parameter is one template argument, either positional (Name empty) or
// named (`name=value`).
type Parameter struct {
	Name    []Node
	Value   []Node
	HasName bool
}

// TableCaption is the `|+` caption line of a table.
type TableCaption struct {
	Children []Node
}

// TableRow is one `|-`-delimited row of a table.
type TableRow struct {
	Cells []TableCell
}

// TableCell is one `|` (ordinary) or `!` (heading) cell of a table row.
type TableCell struct {
	Heading  bool
	Children []Node
}
