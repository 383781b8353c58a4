package llm

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/wikidex/wikidex/internal/citation"
	"gitlab.com/wikidex/wikidex/internal/document"
)

// LanguageServiceArguments is the facade's uniform input shape, independent
// of which backend eventually serves the request, per spec.md §4.9.
type LanguageServiceArguments struct {
	System             string
	Documents          []document.Document
	Query              string
	CitationIndexBegin int
}

// Placeholder tokens the system template may contain.
const (
	placeholderUserQuery    = "$$$USER_QUERY$$$"
	placeholderURL          = "$$$URL$$$"
	placeholderDocumentList = "$$$DOCUMENT_LIST$$$"
	citePlaceholderCount    = 4
)

// renderSystem fills the system template's placeholders: the user's query,
// the rendered document list (each entry carrying its own citation number
// and URL), the first document's URL for templates that reference a single
// source, and up to four $$$CITEn$$$ tokens computed from
// CitationIndexBegin.
func renderSystem(args LanguageServiceArguments) string {
	s := args.System
	s = strings.ReplaceAll(s, placeholderUserQuery, args.Query)
	s = strings.ReplaceAll(s, placeholderDocumentList, renderDocumentList(args))

	url := ""
	if len(args.Documents) > 0 && args.Documents[0].Provenance.Wikipedia != nil {
		url = citation.URL(*args.Documents[0].Provenance.Wikipedia)
	}
	s = strings.ReplaceAll(s, placeholderURL, url)

	for i := 0; i < citePlaceholderCount; i++ {
		token := fmt.Sprintf("$$$CITE%d$$$", i+1)
		s = strings.ReplaceAll(s, token, strconv.Itoa(args.CitationIndexBegin+i))
	}

	return s
}

func renderDocumentList(args LanguageServiceArguments) string {
	var b strings.Builder
	for i, doc := range args.Documents {
		if i > 0 {
			b.WriteString("\n")
		}
		url := ""
		if doc.Provenance.Wikipedia != nil {
			url = citation.URL(*doc.Provenance.Wikipedia)
		}
		fmt.Fprintf(&b, "[CITE%d] %s (%s): %s", args.CitationIndexBegin+i, doc.ArticleTitle, url, doc.Text)
	}
	return b.String()
}
