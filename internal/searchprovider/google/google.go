// Package google documents the "secondary provider" rung of the
// search fallback ladder without requiring a live Google Custom
// Search key in tests. Swap Client for a real implementation by filling
// in Search once a key/engine ID is available; until then it always
// reports zero results so the ladder falls through cleanly.
package google

import (
	"context"

	"github.com/vnagri/claimfusion/internal/capability"
)

// Client is an unimplemented capability.Searcher placeholder.
type Client struct {
	APIKey         string
	SearchEngineID string
}

// New builds a Client. Both fields may be left empty; Search always
// returns no results until a real Custom Search integration lands.
func New(apiKey, searchEngineID string) *Client {
	return &Client{APIKey: apiKey, SearchEngineID: searchEngineID}
}

// Search implements capability.Searcher with no results, never an
// error, so the Workflow's fallback ladder moves on to the next
// rung rather than treating an unconfigured secondary provider as a
// search failure.
func (c *Client) Search(ctx context.Context, query, region string, maxResults int) ([]capability.SearchResult, error) {
	return nil, nil
}
