package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/wikidex/wikidex/internal/document"
)

func newChatStubServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestGetResponseChatBackend(t *testing.T) {
	t.Parallel()

	server := newChatStubServer(t, "Paris is the capital of France.")
	defer server.Close()

	facade := New(server.URL, "test-key", "test-model", KindChat, "", "")

	args := LanguageServiceArguments{
		System:             "Answer using $$$DOCUMENT_LIST$$$ for $$$USER_QUERY$$$, see $$$CITE1$$$.",
		Documents:          []document.Document{{ArticleTitle: "France", Text: "France is in Europe."}},
		Query:              "What is the capital of France?",
		CitationIndexBegin: 1,
	}

	text, errE := facade.GetResponse(context.Background(), args, 256, []string{"References:"})
	require.NoError(t, errE)
	assert.Equal(t, "Paris is the capital of France.", text)
}

func TestGetResponseEmptyChoicesIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{}) //nolint:errcheck
	}))
	defer server.Close()

	facade := New(server.URL, "test-key", "test-model", KindChat, "", "")

	_, errE := facade.GetResponse(context.Background(), LanguageServiceArguments{Query: "hi"}, 16, nil)
	require.Error(t, errE)
	assert.ErrorIs(t, errE, ErrEmptyResponse)
}

func TestRenderSystemSubstitutesPlaceholders(t *testing.T) {
	t.Parallel()

	args := LanguageServiceArguments{
		System:             "$$$USER_QUERY$$$ | $$$DOCUMENT_LIST$$$ | $$$CITE1$$$ $$$CITE2$$$",
		Documents:          []document.Document{{ArticleTitle: "A"}, {ArticleTitle: "B"}},
		Query:              "q",
		CitationIndexBegin: 3,
	}

	out := renderSystem(args)
	assert.Contains(t, out, "q |")
	assert.Contains(t, out, "[CITE3] A")
	assert.Contains(t, out, "[CITE4] B")
	assert.Contains(t, out, "3 4")
}
