package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/docstore"
	"gitlab.com/wikidex/wikidex/internal/document"
	"gitlab.com/wikidex/wikidex/internal/embedclient"
	"gitlab.com/wikidex/wikidex/internal/indexclient"
	"gitlab.com/wikidex/wikidex/internal/llm"
)

// fakeBackend serves a fixed set of documents, ignoring the write path.
type fakeBackend struct {
	docs map[int64]document.Document
}

func (b *fakeBackend) RetrieveFromDB(_ context.Context, ids []int64) ([]document.Document, errors.E) {
	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := b.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (b *fakeBackend) CompletedOn(_ context.Context) (int64, bool, errors.E) {
	return 0, false, nil
}

func (b *fakeBackend) WriteBatch(_ context.Context, _ []docstore.Article, _ []docstore.WriteRecord) errors.E {
	return nil
}

func (b *fakeBackend) WriteCompletedOn(_ context.Context, _ time.Time, _ int64) errors.E {
	return nil
}

func (b *fakeBackend) Close() {}

func newTestEngine(t *testing.T, embedURL, indexURL, llmURL string) *Engine {
	t.Helper()

	backend := &fakeBackend{docs: map[int64]document.Document{
		1: {ID: 1, ArticleID: 1, ArticleTitle: "France", Text: "France is a country in Europe."},
		2: {ID: 2, ArticleID: 2, ArticleTitle: "Paris", Text: "Paris is the capital of France."},
	}}
	store, errE := docstore.New(backend, docstore.Config{Logger: zerolog.Nop()})
	require.NoError(t, errE)

	embedder := embedclient.New(embedURL, "test-key", "test-embed-model")
	index := indexclient.New(indexURL, 2)
	facade := llm.New(llmURL, "test-key", "test-llm-model", llm.KindChat, "", "")

	return New(embedder, index, store, facade, Config{
		SystemTemplate:     "Query: $$$USER_QUERY$$$\nDocs: $$$DOCUMENT_LIST$$$",
		CitationIndexBegin: 1,
	})
}

func newEmbedStub(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := openai.EmbeddingResponse{
			Data: []openai.Embedding{{Embedding: vector}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newIndexStub(t *testing.T, neighbors []int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"neighbors": neighbors}))
	}))
}

func newChatStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestConversationRejectsEmptyHistory(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, "http://unused", "http://unused", "http://unused")
	_, _, errE := e.Conversation(context.Background(), document.Conversation{}, nil)
	require.Error(t, errE)
	assert.ErrorIs(t, errE, document.ErrEmptyConversation)
}

func TestConversationRejectsNonUserLastMessage(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, "http://unused", "http://unused", "http://unused")
	conv := document.Conversation{Messages: []document.Message{
		{Role: document.RoleUser, Content: "hi"},
		{Role: document.RoleAssistant, Content: "hello"},
	}}
	_, _, errE := e.Conversation(context.Background(), conv, nil)
	require.Error(t, errE)
	assert.ErrorIs(t, errE, document.ErrLastMessageIsNotUser)
}

func TestConversationBufferedPathReturnsMessageAndSources(t *testing.T) {
	t.Parallel()

	embedServer := newEmbedStub(t, []float32{0.1, 0.2})
	defer embedServer.Close()
	indexServer := newIndexStub(t, []int64{2, 1})
	defer indexServer.Close()
	llmServer := newChatStub(t, "Paris is the capital of France.")
	defer llmServer.Close()

	e := newTestEngine(t, embedServer.URL, indexServer.URL, llmServer.URL)

	conv := document.Conversation{Messages: []document.Message{
		{Role: document.RoleUser, Content: "What is the capital of France?"},
	}}

	msg, sources, errE := e.Conversation(context.Background(), conv, nil)
	require.NoError(t, errE)
	assert.Equal(t, document.RoleAssistant, msg.Role)
	assert.Equal(t, "Paris is the capital of France.", msg.Content)
	require.Len(t, sources, 2)
	assert.Equal(t, int64(2), sources[0].DocumentID)
	assert.Equal(t, int64(1), sources[1].DocumentID)
}

func TestStreamingConversationEmitsContentFramesThenDone(t *testing.T) {
	t.Parallel()

	embedServer := newEmbedStub(t, []float32{0.1, 0.2})
	defer embedServer.Close()
	indexServer := newIndexStub(t, []int64{1})
	defer indexServer.Close()

	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range []string{"Paris", " is", " nice"} {
			chunk := openai.ChatCompletionStreamResponse{
				Choices: []openai.ChatCompletionStreamChoice{
					{Delta: openai.ChatCompletionStreamChoiceDelta{Content: tok}},
				},
			}
			data, _ := json.Marshal(chunk) //nolint:errcheck
			w.Write([]byte("data: " + string(data) + "\n\n")) //nolint:errcheck
			flusher.Flush()
		}
		w.Write([]byte("data: [DONE]\n\n")) //nolint:errcheck
		flusher.Flush()
	}))
	defer llmServer.Close()

	e := newTestEngine(t, embedServer.URL, indexServer.URL, llmServer.URL)

	conv := document.Conversation{Messages: []document.Message{
		{Role: document.RoleUser, Content: "What is the capital of France?"},
	}}

	tx := make(chan []byte, 8)
	errE := e.StreamingConversation(context.Background(), conv, tx, nil)
	require.NoError(t, errE)
	close(tx)

	var frames [][]byte
	for frame := range tx {
		frames = append(frames, frame)
	}
	require.Len(t, frames, 4)
	for _, f := range frames[:3] {
		assert.Contains(t, string(f), "event: message")
		assert.Contains(t, string(f), `"content"`)
	}
	assert.Contains(t, string(frames[3]), `"finished":"DONE"`)
}
