// Package tavily implements capability.Searcher against the Tavily
// search API (https://tavily.com), the primary provider in the search
// ladder. No Tavily SDK is available, so the client is a plain
// net/http JSON POST.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/claimerr"
)

const defaultEndpoint = "https://api.tavily.com/search"

// Client implements capability.Searcher against the Tavily HTTP API.
type Client struct {
	endpoint string
	apiKey   string
	httpCli  *http.Client
}

// New builds a Client. timeout <= 0 defaults to 30s.
func New(apiKey string, timeout time.Duration) *Client {
	return NewWithEndpoint(defaultEndpoint, apiKey, timeout)
}

// NewWithEndpoint builds a Client against a non-default endpoint, for
// tests that stand up a local fake Tavily server.
func NewWithEndpoint(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, httpCli: &http.Client{Timeout: timeout}}
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
	Country     string `json:"country,omitempty"`
}

type searchResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

// regionToCountry maps the capability.Searcher region hint to Tavily's
// "country" parameter; providers that don't recognize a region ignore
// it.
var regionToCountry = map[string]string{
	"vn-vi": "vietnam",
}

// Search implements capability.Searcher.
func (c *Client) Search(ctx context.Context, query, region string, maxResults int) ([]capability.SearchResult, error) {
	if c.apiKey == "" {
		return nil, claimerr.New(claimerr.KindInvalidInput, "tavily: no API key configured", nil)
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	reqBody := searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  maxResults,
		Country:     regionToCountry[region],
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("tavily: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, claimerr.New(claimerr.KindProviderTransient, "tavily: request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, claimerr.New(claimerr.KindProviderTransient, "tavily: read response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, claimerr.New(claimerr.KindProviderRateLimited, "tavily: rate limited", fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, claimerr.New(claimerr.KindProviderFatal, "tavily: auth failure", fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, claimerr.New(claimerr.KindProviderTransient, "tavily: unexpected status", fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	out := make([]capability.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		out = append(out, capability.SearchResult{URL: r.URL, Title: r.Title, Snippet: r.Content})
	}
	return out, nil
}
