package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
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
	"gitlab.com/wikidex/wikidex/internal/engine"
	"gitlab.com/wikidex/wikidex/internal/indexclient"
	"gitlab.com/wikidex/wikidex/internal/llm"
)

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

func (b *fakeBackend) CompletedOn(_ context.Context) (int64, bool, errors.E) { return 0, false, nil }
func (b *fakeBackend) WriteBatch(_ context.Context, _ []docstore.Article, _ []docstore.WriteRecord) errors.E {
	return nil
}
func (b *fakeBackend) WriteCompletedOn(_ context.Context, _ time.Time, _ int64) errors.E { return nil }
func (b *fakeBackend) Close()                                                            {}

func newTestServer(t *testing.T, embedURL, indexURL, llmURL string) *httptest.Server {
	t.Helper()

	backend := &fakeBackend{docs: map[int64]document.Document{
		1: {ID: 1, ArticleID: 1, ArticleTitle: "Paris", Text: "Paris is the capital of France."},
	}}
	store, errE := docstore.New(backend, docstore.Config{Logger: zerolog.Nop()})
	require.NoError(t, errE)

	embedder := embedclient.New(embedURL, "test-key", "test-embed-model")
	index := indexclient.New(indexURL, 2)
	facade := llm.New(llmURL, "test-key", "test-llm-model", llm.KindChat, "", "")

	eng := engine.New(embedder, index, store, facade, engine.Config{
		SystemTemplate:     "Query: $$$USER_QUERY$$$\nDocs: $$$DOCUMENT_LIST$$$",
		CitationIndexBegin: 1,
	})

	srv := New(eng, zerolog.Nop())
	return httptest.NewServer(srv.Router())
}

func newEmbedStub(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := openai.EmbeddingResponse{Data: []openai.Embedding{{Embedding: vector}}}
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
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestHandleConversationReturnsMessageAndSources(t *testing.T) {
	t.Parallel()

	embedServer := newEmbedStub(t, []float32{0.1, 0.2})
	defer embedServer.Close()
	indexServer := newIndexStub(t, []int64{1})
	defer indexServer.Close()
	llmServer := newChatStub(t, "Paris is the capital of France.")
	defer llmServer.Close()

	srv := newTestServer(t, embedServer.URL, indexServer.URL, llmServer.URL)
	defer srv.Close()

	body, err := json.Marshal(document.Conversation{Messages: []document.Message{
		{Role: document.RoleUser, Content: "What is the capital of France?"},
	}})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/conversation", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out conversationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Paris is the capital of France.", out.Message.Content)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, int64(1), out.Sources[0].DocumentID)
}

func TestHandleConversationRejectsEmptyConversation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "http://unused", "http://unused", "http://unused")
	defer srv.Close()

	body, err := json.Marshal(document.Conversation{})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/conversation", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleStreamingConversationEmitsFrames(t *testing.T) {
	t.Parallel()

	embedServer := newEmbedStub(t, []float32{0.1, 0.2})
	defer embedServer.Close()
	indexServer := newIndexStub(t, []int64{1})
	defer indexServer.Close()

	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
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

	srv := newTestServer(t, embedServer.URL, indexServer.URL, llmServer.URL)
	defer srv.Close()

	body, err := json.Marshal(document.Conversation{Messages: []document.Message{
		{Role: document.RoleUser, Content: "What is the capital of France?"},
	}})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/streaming_conversation", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// Three content frames plus the terminal DONE frame.
	assert.Equal(t, 4, bytes.Count(raw, []byte("event: message")))
	assert.Contains(t, string(raw), `"finished":"DONE"`)
}
