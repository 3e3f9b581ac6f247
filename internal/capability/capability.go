// Package capability collects the small, pure-function-shaped interfaces
// the pipeline's core components (extractor, judge, resolver, validator)
// depend on instead of concrete provider SDKs. Each concrete adapter
// (internal/llm/*, internal/searchprovider/*, internal/scrapeprovider/*,
// internal/judgecache/*) implements one of these against its own
// underlying client.
package capability

import "context"

// Completer generates free-form text completions, used by the extractor
// and judge for claim extraction and pairwise contradiction verdicts.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Embedder produces a single dense vector per input string, used by the
// resolver's embedding-similarity clustering step and the judge's
// embedding-similarity decision rung.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SearchResult is one hit returned by a Searcher.
type SearchResult struct {
	URL     string
	Title   string
	Snippet string
}

// Searcher runs a web search for a query and returns ranked results.
// region follows the provider's own region-hint format (e.g. "vn-vi"
// for Vietnamese results); providers that don't understand it ignore it.
type Searcher interface {
	Search(ctx context.Context, query, region string, maxResults int) ([]SearchResult, error)
}

// Scraper fetches a URL and returns its readable plain-text content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// JudgeCache persists and retrieves pairwise Judge verdicts keyed by a
// caller-supplied content hash, so repeated resolver runs over the same
// claim pairs skip the LLM call.
type JudgeCache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
