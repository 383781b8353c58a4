// Package document defines the core retrievable entities of the corpus:
// Documents (normalized, split passages), their Embeddings, Provenance,
// the Conversation/Message shape of a serving request, and the Source
// metadata attached to retrieved Documents in a response.
package document

import (
	"time"

	"gitlab.com/tozd/go/errors"
)

// HeadingStart and HeadingEnd are sentinel tokens the markup normalizer
// embeds around a heading path. Neither can occur in normalized wiki text,
// so downstream splitting can locate section boundaries unambiguously.
const (
	HeadingStart = "###HEADING_START###"
	HeadingEnd   = "###HEADING_END###"
)

// Dimension is the default embedding vector width (gte-small).
const Dimension = 384

// Provenance is a tagged union of where a Document came from. Wikipedia is
// the only variant the ingestion pipeline currently produces.
type Provenance struct {
	Wikipedia *WikipediaProvenance `json:"wikipedia,omitempty"`
}

// WikipediaProvenance names the source article and the two dates under
// which it was retrieved and last modified.
type WikipediaProvenance struct {
	Title            string    `json:"title"`
	AccessDate       time.Time `json:"accessDate"`
	ModificationDate time.Time `json:"modificationDate"`
}

// Document is one retrievable passage: a section of one source article,
// carrying its heading path and the dates of its source.
type Document struct {
	ID               int64      `json:"id"`
	ArticleID        int64      `json:"articleId"`
	ArticleTitle     string     `json:"articleTitle"`
	HeadingPath      []string   `json:"headingPath"`
	Text             string     `json:"text"`
	AccessDate       time.Time  `json:"accessDate"`
	ModificationDate time.Time  `json:"modificationDate"`
	Provenance       Provenance `json:"provenance"`
}

// Embedding is the dense vector representation of one Document, 1-to-1 by ID.
type Embedding struct {
	DocumentID int64     `json:"documentId"`
	Vector     []float32 `json:"vector"`
}

// Role of a Message in a Conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a Conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered turn history supplied with a serving request.
type Conversation struct {
	Messages []Message `json:"messages"`
}

// ErrEmptyConversation and ErrLastMessageIsNotUser are the two input errors
// the retrieval engine can return before doing any work.
var (
	ErrEmptyConversation    = errors.Base("empty conversation")
	ErrLastMessageIsNotUser = errors.Base("last message is not from user")
)

// Validate enforces that a Conversation is non-empty and ends with a user
// turn, per the engine's entry contract.
func (c Conversation) Validate() errors.E {
	if len(c.Messages) == 0 {
		return errors.WithStack(ErrEmptyConversation)
	}
	if c.Messages[len(c.Messages)-1].Role != RoleUser {
		return errors.WithStack(ErrLastMessageIsNotUser)
	}
	return nil
}

// LastUserMessage returns the content of the final message, which Validate
// guarantees is a user turn.
func (c Conversation) LastUserMessage() string {
	return c.Messages[len(c.Messages)-1].Content
}

// Source is derived per request from a retrieved Document: its citation
// string, a URL, and the original passage text, returned alongside the
// LLM's answer.
type Source struct {
	DocumentID int64  `json:"documentId"`
	Citation   string `json:"citation"`
	URL        string `json:"url"`
	Text       string `json:"text"`
}
