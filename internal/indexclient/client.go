// Package indexclient implements the index client: a narrow RPC against the
// trained vector index's search service, returning nearest-neighbor
// document IDs for a query vector.
//
// Grounded on peer-db's retryablehttp.Client configuration pattern
// (cmd/wikipedia's HTTP client setup) and its strict response decoding via
// gitlab.com/tozd/go/x (storage.go's DecodeJSONWithoutUnknownFields),
// wired against the wire protocol fixed by spec.md §6 rather than any
// REST convention a library would assume — hence a small hand-written
// client instead of an OpenAPI-style generated one.
package indexclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"gitlab.com/tozd/go/errors"
	"gitlab.com/tozd/go/x"
)

// ErrIncorrectDimensions is returned when a query vector's length doesn't
// match the trained index's input dimension.
var ErrIncorrectDimensions = errors.Base("incorrect dimensions")

// Client queries a trained vector index's immutable search endpoint.
type Client struct {
	httpClient *retryablehttp.Client
	url        string
	dimension  int
}

// New constructs a Client against the search service's query URL, rejecting
// query vectors whose length isn't exactly dimension.
func New(url string, dimension int) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	return &Client{httpClient: httpClient, url: url, dimension: dimension}
}

// queryRequest mirrors the service's positional-field wire shape exactly:
// {"0": vector, "1": k}.
type queryRequest struct {
	Vector []float32 `json:"0"`
	K      int       `json:"1"`
}

type queryResponse struct {
	Neighbors []int64 `json:"neighbors"`
}

// Search returns the k nearest document IDs to vector, in ascending
// distance order, as reported by the service.
func (c *Client) Search(ctx context.Context, vector []float32, k int) ([]int64, errors.E) {
	if len(vector) != c.dimension {
		return nil, errors.WithStack(ErrIncorrectDimensions)
	}

	body, err := json.Marshal(queryRequest{Vector: vector, K: k})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapWith(err, errQuery)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errE := errors.WithStack(errQuery)
		errors.Details(errE)["status"] = resp.StatusCode
		return nil, errE
	}

	// The search service's wire shape is fixed; a field we don't recognize
	// signals a protocol mismatch worth failing loudly on rather than
	// silently ignoring, the same strict decoding peer-db applies to every
	// request body it reads (e.g. storage.go's use of the same helper).
	var result queryResponse
	if errE := x.DecodeJSONWithoutUnknownFields(resp.Body, &result); errE != nil {
		return nil, errors.WrapWith(errE, errQuery)
	}
	return result.Neighbors, nil
}

var errQuery = errors.Base("index query error")
