package workflow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/extractor"
	"github.com/vnagri/claimfusion/internal/global"
	"github.com/vnagri/claimfusion/internal/resolver"
	"github.com/vnagri/claimfusion/internal/workflow"
)

type stubSearcher struct {
	results []capability.SearchResult
	err     error
}

func (s stubSearcher) Search(ctx context.Context, query, region string, maxResults int) ([]capability.SearchResult, error) {
	return s.results, s.err
}

type stubScraper struct {
	textByURL map[string]string
	errByURL  map[string]error
}

func (s stubScraper) Scrape(ctx context.Context, url string) (string, error) {
	if err, ok := s.errByURL[url]; ok {
		return "", err
	}
	return s.textByURL[url], nil
}

type stubCompleter struct {
	response string
}

func (s stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.response, nil
}

func newWorkflow(t *testing.T, searcher capability.Searcher, scraper capability.Scraper, llmResponse string) *workflow.Workflow {
	t.Helper()
	ex := extractor.New(stubCompleter{response: llmResponse}, nil, nil, extractor.DefaultPolicy)
	res := resolver.New(nil)
	cfg := global.DefaultWorkflowConfig()
	return workflow.New(searcher, scraper, ex, res, cfg)
}

func TestRunNoSearchResultsReturnsNoInfoSummary(t *testing.T) {
	w := newWorkflow(t, stubSearcher{}, stubScraper{}, "[]")
	st, err := w.Run(context.Background(), "lúa", "")
	require.NoError(t, err)
	require.Empty(t, st.ResolvedClaims)
	require.Contains(t, st.Summary, "Không tìm thấy")
}

func TestRunAllSourcesFailToScrape(t *testing.T) {
	searcher := stubSearcher{results: []capability.SearchResult{
		{URL: "https://vnexpress.net/a"},
		{URL: "https://nongnghiep.vn/b"},
	}}
	scraper := stubScraper{errByURL: map[string]error{
		"https://vnexpress.net/a": context.DeadlineExceeded,
		"https://nongnghiep.vn/b": context.DeadlineExceeded,
	}}
	w := newWorkflow(t, searcher, scraper, "[]")

	st, err := w.Run(context.Background(), "lúa", "")
	require.NoError(t, err)
	require.Empty(t, st.ResolvedClaims)
	require.Len(t, st.DebugInfo.Errors, 2)
	require.Contains(t, st.Summary, "Không tìm thấy")
}

func TestRunSingleSourceSingleClaim(t *testing.T) {
	searcher := stubSearcher{results: []capability.SearchResult{{URL: "https://vnexpress.net/a"}}}
	scraper := stubScraper{textByURL: map[string]string{
		"https://vnexpress.net/a": "Giống lúa ST25 đạt năng suất 8.5 tấn/ha.",
	}}
	llmResponse := `[{"subject":"Lúa ST25","predicate":"Năng suất","object":"8.5 tấn/ha","context":"","confidence":0.9}]`
	w := newWorkflow(t, searcher, scraper, llmResponse)

	st, err := w.Run(context.Background(), "lúa", "")
	require.NoError(t, err)
	require.Len(t, st.ResolvedClaims, 1)
	require.Equal(t, "8.5 tấn/ha", st.ResolvedClaims[0].GoldClaim.Object)
	require.True(t, strings.Contains(st.Summary, "Lúa ST25"))
	require.Contains(t, st.Summary, "vnexpress.net")
}

func TestRunContextAlreadyCancelled(t *testing.T) {
	w := newWorkflow(t, stubSearcher{}, stubScraper{}, "[]")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Run(ctx, "lúa", "")
	require.Error(t, err)
}
