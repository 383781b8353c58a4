// Package embedclient implements the embedding client: a remote batched
// embedding RPC against an OpenAI-compatible embeddings endpoint, with
// input-size clamping and exponential-backoff retry.
//
// Grounded on aqua777-go-llamaindex/embedding's OpenAIEmbedding (go-openai
// client construction against a custom base URL), with retry wired through
// peer-db's retryablehttp.Client the way its CLI commands configure their
// HTTP clients.
package embedclient

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"github.com/hashicorp/go-retryablehttp"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// MaxInputLength is the maximum number of characters sent per input string;
// longer strings are truncated to this length before they are sent.
const MaxInputLength = 122880

// Client embeds text into document.Dimension-wide float32 vectors via an
// OpenAI-compatible /embeddings endpoint.
type Client struct {
	openai *openai.Client
	model  string
}

// New constructs a Client against baseURL using model, retrying transport
// failures with retryablehttp's default exponential backoff.
func New(baseURL, apiKey, model string) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = httpClient.StandardClient()

	return &Client{
		openai: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func clamp(s string) string {
	if len(s) > MaxInputLength {
		return s[:MaxInputLength]
	}
	return s
}

// Embed embeds a single string, failing if the service returns anything
// other than exactly one vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, errors.E) {
	vectors, errE := c.EmbedBatch(ctx, []string{text})
	if errE != nil {
		return nil, errE
	}
	if len(vectors) != 1 {
		return nil, document.NewEmbeddingSizeMismatch(1, len(vectors))
	}
	return vectors[0], nil
}

// EmbedBatch embeds many strings in one request, returning vectors in
// request order, failing if the response count doesn't match the request.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, errors.E) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = clamp(t)
	}

	resp, err := c.openai.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: inputs,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, document.NewEmbeddingSizeMismatch(len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// Up probes the service for liveness, returning the list of model IDs it
// advertises.
func (c *Client) Up(ctx context.Context) ([]string, errors.E) {
	resp, err := c.openai.ListModels(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	ids := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		ids[i] = m.ID
	}
	return ids, nil
}
