package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
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
	"gitlab.com/wikidex/wikidex/internal/indextrainer"
)

type memoryBackend struct {
	mu          sync.Mutex
	articles    map[int64]docstore.Article
	records     []docstore.WriteRecord
	completedOn bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{articles: make(map[int64]docstore.Article)}
}

func (b *memoryBackend) RetrieveFromDB(context.Context, []int64) ([]document.Document, errors.E) {
	return nil, nil
}

func (b *memoryBackend) CompletedOn(context.Context) (int64, bool, errors.E) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.articles)), b.completedOn, nil
}

func (b *memoryBackend) WriteBatch(_ context.Context, articles []docstore.Article, records []docstore.WriteRecord) errors.E {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range articles {
		b.articles[a.ID] = a
	}
	b.records = append(b.records, records...)
	return nil
}

func (b *memoryBackend) WriteCompletedOn(context.Context, time.Time, int64) errors.E {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completedOn = true
	return nil
}

func (b *memoryBackend) Close() {}

func wordsOfLength(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "word"
	}
	return strings.Join(words, " ")
}

func writeTestDump(t *testing.T, dir string, pages map[string]string) string {
	t.Helper()

	var buf strings.Builder
	buf.WriteString(`<mediawiki><siteinfo></siteinfo>`)
	for title, text := range pages {
		buf.WriteString(`<page><title>` + title + `</title><ns>0</ns><id>1</id><revision><text>`)
		buf.WriteString(text)
		buf.WriteString(`</text><model>wikitext</model><format>text/x-wiki</format></revision></page>`)
	}
	buf.WriteString(`</mediawiki>`)

	path := filepath.Join(dir, "testwiki-20240101-pages-articles.xml")
	require.NoError(t, os.WriteFile(path, []byte(buf.String()), 0o644))
	return path
}

func newEmbedBatchStub(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]openai.Embedding, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dim)
			for j := range vec {
				vec[j] = float32(i+j) * 0.01
			}
			data[i] = openai.Embedding{Embedding: vec, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(openai.EmbeddingResponse{Data: data}))
	}))
}

func TestRunIngestsArticlesAndTrainsIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dumpPath := writeTestDump(t, dir, map[string]string{
		"France": wordsOfLength(30),
		"Spain":  wordsOfLength(30),
	})

	embedServer := newEmbedBatchStub(t, 2)
	defer embedServer.Close()

	backend := newMemoryBackend()
	embedder := embedclient.New(embedServer.URL, "", "test-embed-model")

	indexPath := filepath.Join(dir, "index.gob")

	errE := Run(context.Background(), backend, embedder, Options{
		WikiXMLPath:    dumpPath,
		IndexPath:      indexPath,
		IndexOutputDim: 2,
		ChunkSplitOptions: ChunkSplitOptions{
			ChunkSize:    2048,
			ChunkOverlap: 0,
			MinWords:     5,
		},
	}, zerolog.Nop())
	require.NoError(t, errE)

	assert.Len(t, backend.articles, 2)
	assert.NotEmpty(t, backend.records)
	assert.True(t, backend.completedOn)

	assert.True(t, indextrainer.Exists(indexPath))
	idx, errE := indextrainer.Load(indexPath)
	require.NoError(t, errE)
	assert.Equal(t, len(backend.records), len(idx.IDs))
}

func TestRunSkipsWhenAlreadyCompleted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dumpPath := writeTestDump(t, dir, map[string]string{"France": wordsOfLength(30)})

	backend := newMemoryBackend()
	backend.completedOn = true

	embedder := embedclient.New("http://unused", "", "test-embed-model")

	errE := Run(context.Background(), backend, embedder, Options{
		WikiXMLPath: dumpPath,
	}, zerolog.Nop())
	require.NoError(t, errE)
	assert.Empty(t, backend.articles)
}
