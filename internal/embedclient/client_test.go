package embedclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T, vectorsPerRequest int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		n := vectorsPerRequest
		if n == 0 {
			n = len(req.Input)
		}
		data := make([]map[string]any, n)
		for i := range data {
			data[i] = map[string]any{"embedding": []float32{0.1, 0.2, 0.3}, "index": i, "object": "embedding"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "test"})
	}))
}

func TestEmbedBatchReturnsOneVectorPerInput(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, 0)
	defer server.Close()

	client := New(server.URL, "test-key", "test-model")
	vectors, errE := client.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, errE)
	assert.Len(t, vectors, 3)
}

func TestEmbedSizeMismatch(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, 2)
	defer server.Close()

	client := New(server.URL, "test-key", "test-model")
	_, errE := client.Embed(context.Background(), "pour water out of a boot")
	require.Error(t, errE)
}
