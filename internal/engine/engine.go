// Package engine implements the Retrieval/Inference Engine: it turns one
// Conversation into either a single assistant Message (buffered) or a
// stream of client-framed events, grounded in up to K retrieved Documents,
// per spec.md §4.8.
package engine

import (
	"context"
	"time"

	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/citation"
	"gitlab.com/wikidex/wikidex/internal/docstore"
	"gitlab.com/wikidex/wikidex/internal/document"
	"gitlab.com/wikidex/wikidex/internal/embedclient"
	"gitlab.com/wikidex/wikidex/internal/indexclient"
	"gitlab.com/wikidex/wikidex/internal/llm"
)

// DefaultNumDocumentsToRetrieve is K, the number of neighbors searched and
// fetched per turn. spec.md §9 flags this as a hard-coded constant in the
// original that should be exposed as configuration; Engine does so via
// Config.NumDocumentsToRetrieve.
const DefaultNumDocumentsToRetrieve = 4

// DefaultStopPhrase is always included in the stop-phrase set passed to the
// LLM, even if the caller supplies none, matching the original's always-on
// "References:" stop phrase (rust/src/engine.rs).
const DefaultStopPhrase = "References:"

// Config bundles the Engine's fixed per-deployment settings.
type Config struct {
	SystemTemplate        string
	NumDocumentsToRetrieve int
	CitationIndexBegin    int
}

// Engine orchestrates embed -> search -> fetch -> prompt-render -> LLM-call.
type Engine struct {
	embedder *embedclient.Client
	index    *indexclient.Client
	store    *docstore.Store
	facade   *llm.Facade
	config   Config
}

func New(embedder *embedclient.Client, index *indexclient.Client, store *docstore.Store, facade *llm.Facade, config Config) *Engine {
	if config.NumDocumentsToRetrieve <= 0 {
		config.NumDocumentsToRetrieve = DefaultNumDocumentsToRetrieve
	}
	return &Engine{embedder: embedder, index: index, store: store, facade: facade, config: config}
}

func withDefaultStopPhrase(stopPhrases []string) []string {
	for _, p := range stopPhrases {
		if p == DefaultStopPhrase {
			return stopPhrases
		}
	}
	return append([]string{DefaultStopPhrase}, stopPhrases...)
}

// retrieve runs the shared embed -> search -> fetch path steps 1-5 of
// spec.md §4.8 describe, preserving the index search's neighbor order.
func (e *Engine) retrieve(ctx context.Context, conv document.Conversation) ([]document.Document, errors.E) {
	if errE := conv.Validate(); errE != nil {
		return nil, errE
	}

	vector, errE := e.embedder.Embed(ctx, conv.LastUserMessage())
	if errE != nil {
		return nil, errE
	}

	ids, errE := e.index.Search(ctx, vector, e.config.NumDocumentsToRetrieve)
	if errE != nil {
		return nil, errE
	}

	docs, errE := e.store.Retrieve(ctx, ids)
	if errE != nil {
		return nil, errE
	}

	return orderByIDs(docs, ids), nil
}

// orderByIDs re-sorts docs (returned by Store.Retrieve in no guaranteed
// order) to match the index search's neighbor order.
func orderByIDs(docs []document.Document, ids []int64) []document.Document {
	byID := make(map[int64]document.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	ordered := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return ordered
}

// Conversation drives one buffered turn, returning the assistant Message
// and the Sources derived from the retrieved Documents.
func (e *Engine) Conversation(ctx context.Context, conv document.Conversation, stopPhrases []string) (document.Message, []document.Source, errors.E) {
	docs, errE := e.retrieve(ctx, conv)
	if errE != nil {
		return document.Message{}, nil, errE
	}

	args := e.buildArgs(docs, conv.LastUserMessage())
	text, errE := e.facade.GetResponse(ctx, args, maxResponseTokens, withDefaultStopPhrase(stopPhrases))
	if errE != nil {
		return document.Message{}, nil, errE
	}

	return document.Message{Role: document.RoleAssistant, Content: text}, sourcesFor(docs), nil
}

// maxResponseTokens bounds generation length; the original hard-codes this
// per deployment rather than exposing it per-request.
const maxResponseTokens = 1024

func (e *Engine) buildArgs(docs []document.Document, query string) llm.LanguageServiceArguments {
	return llm.LanguageServiceArguments{
		System:             renderCurrentTime(e.config.SystemTemplate, time.Now()),
		Documents:          docs,
		Query:              query,
		CitationIndexBegin: e.config.CitationIndexBegin,
	}
}

// StreamingConversation drives one streamed turn: it runs the LLM facade's
// stream in a spawned goroutine, converts each partial content fragment it
// produces into a framed server-sent event on tx, and appends a terminal
// "DONE" frame once the upstream stream closes, per spec.md §4.8 step 8.
// The stop-phrase default and retrieval path match Conversation exactly.
func (e *Engine) StreamingConversation(ctx context.Context, conv document.Conversation, tx chan<- []byte, stopPhrases []string) errors.E {
	docs, errE := e.retrieve(ctx, conv)
	if errE != nil {
		return errE
	}

	args := e.buildArgs(docs, conv.LastUserMessage())

	tokens := make(chan string)
	streamErr := make(chan errors.E, 1)
	go func() {
		defer close(tokens)
		streamErr <- e.facade.StreamResponse(ctx, args, tokens, maxResponseTokens, withDefaultStopPhrase(stopPhrases))
	}()

	for token := range tokens {
		data, err := contentFrame(token).Marshal()
		if err != nil {
			return errors.WithStack(err)
		}
		select {
		case tx <- data:
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}

	if errE := <-streamErr; errE != nil {
		return errE
	}

	data, err := doneFrame.Marshal()
	if err != nil {
		return errors.WithStack(err)
	}
	select {
	case tx <- data:
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
	return nil
}

func sourcesFor(docs []document.Document) []document.Source {
	sources := make([]document.Source, 0, len(docs))
	for _, doc := range docs {
		var cite, url string
		if doc.Provenance.Wikipedia != nil {
			cite = citation.Format(*doc.Provenance.Wikipedia, citation.StyleMLA)
			url = citation.URL(*doc.Provenance.Wikipedia)
		}
		sources = append(sources, document.Source{
			DocumentID: doc.ID,
			Citation:   cite,
			URL:        url,
			Text:       doc.Text,
		})
	}
	return sources
}
