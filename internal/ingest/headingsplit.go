package ingest

import (
	"context"
	"strings"

	"gitlab.com/wikidex/wikidex/internal/document"
	"gitlab.com/wikidex/wikidex/internal/pipeline"
)

// newHeadingSplitStage splits one normalized article's sentinel-delimited
// text into per-section documents, following original_source's
// WikipediaHeadingSplitter three-case split exactly: a section with both
// sentinels yields (heading, text); the leading section (before any
// sentinel) has no heading and is prefixed with the article title; any
// other malformed split falls back to an empty heading and a plain join.
func newHeadingSplitStage() pipeline.StageFunc[normalizedArticle, splitDocument] {
	return pipeline.NewStageFunc("HeadingSplitter", func(_ context.Context, article normalizedArticle) ([]splitDocument, error) {
		sections := strings.Split(article.Text, document.HeadingStart)

		docs := make([]splitDocument, 0, len(sections))
		for _, section := range sections {
			parts := strings.Split(section, document.HeadingEnd)

			var headingPath []string
			var text string
			switch len(parts) {
			case 2:
				headingPath = splitHeadingPath(parts[0])
				text = parts[1]
			case 1:
				text = article.Title + parts[0]
			default:
				text = strings.Join(parts, "")
			}

			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}

			docs = append(docs, splitDocument{
				ArticleID:    article.ArticleID,
				ArticleTitle: article.Title,
				HeadingPath:  headingPath,
				Text:         text,
				Date:         article.Date,
			})
		}
		return docs, nil
	})
}

func splitHeadingPath(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	path := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			path = append(path, p)
		}
	}
	return path
}
