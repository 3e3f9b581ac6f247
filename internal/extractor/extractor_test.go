package extractor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/breaker"
	"github.com/vnagri/claimfusion/internal/claimerr"
	"github.com/vnagri/claimfusion/internal/extractor"
	"github.com/vnagri/claimfusion/internal/ratelimit"
)

type stubCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var resp string
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	return resp, err
}

func TestExtractEmptyTextReturnsNoClaims(t *testing.T) {
	e := extractor.New(&stubCompleter{}, nil, nil, extractor.DefaultPolicy)
	claims, err := e.Extract(context.Background(), "   ", "")
	require.NoError(t, err)
	require.Empty(t, claims)
}

func TestExtractParsesJSONArray(t *testing.T) {
	llm := &stubCompleter{responses: []string{`[{"subject":"Lúa ST25","predicate":"Năng suất","object":"8.5 tấn/ha","context":"2024","confidence":0.8}]`}}
	e := extractor.New(llm, ratelimit.New(100, time.Second), breaker.New(3, time.Minute, 3), extractor.DefaultPolicy)

	claims, err := e.Extract(context.Background(), "short text", "https://vnexpress.net/a")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	require.Equal(t, "Lúa ST25", claims[0].Subject)
	require.Equal(t, "https://vnexpress.net/a", claims[0].SourceURL)
}

func TestExtractRecoversFromPrefixedJunk(t *testing.T) {
	llm := &stubCompleter{responses: []string{"Here is the result:\n[{\"subject\":\"A\",\"predicate\":\"B\",\"object\":\"C\",\"context\":\"\",\"confidence\":0.5}]\nThanks."}}
	e := extractor.New(llm, nil, nil, extractor.DefaultPolicy)

	claims, err := e.Extract(context.Background(), "text", "")
	require.NoError(t, err)
	require.Len(t, claims, 1)
}

func TestExtractDropsInvalidClaims(t *testing.T) {
	llm := &stubCompleter{responses: []string{`[{"subject":"","predicate":"B","object":"C","confidence":0.5}]`}}
	e := extractor.New(llm, nil, nil, extractor.DefaultPolicy)

	claims, err := e.Extract(context.Background(), "text", "")
	require.NoError(t, err)
	require.Empty(t, claims)
}

func TestExtractDedupsByRawCasedTriple(t *testing.T) {
	llm := &stubCompleter{responses: []string{
		`[{"subject":"A","predicate":"B","object":"C","confidence":0.5},{"subject":"A","predicate":"B","object":"C","confidence":0.9}]`,
	}}
	e := extractor.New(llm, nil, nil, extractor.DefaultPolicy)

	claims, err := e.Extract(context.Background(), "text", "")
	require.NoError(t, err)
	require.Len(t, claims, 1, "exact-triple duplicates collapse to first occurrence")
	require.Equal(t, 0.5, claims[0].Confidence)
}

func TestExtractSkipsChunkWhenBreakerOpen(t *testing.T) {
	llm := &stubCompleter{responses: []string{`[{"subject":"A","predicate":"B","object":"C","confidence":0.5}]`}}
	brk := breaker.New(1, time.Hour, 1)
	brk.Failure(true) // 429-class failure trips to OPEN after a single failure (threshold=1)

	e := extractor.New(llm, nil, brk, extractor.DefaultPolicy)
	claims, err := e.Extract(context.Background(), "text", "")
	require.NoError(t, err)
	require.Empty(t, claims)
	require.Zero(t, llm.calls, "LLM must not be called while the breaker is open")
}

func TestExtractAbortsOnProviderFatal(t *testing.T) {
	fatal := claimerr.New(claimerr.KindProviderFatal, "quota exhausted for the day", nil)
	sentence := "Năng suất lúa đạt cao trong vụ mùa này. "
	text := strings.Repeat(sentence, 200)
	llm := &stubCompleter{
		responses: []string{`[{"subject":"A","predicate":"B","object":"C","confidence":0.5}]`},
		errs:      []error{nil, fatal},
	}
	e := extractor.New(llm, nil, nil, extractor.Policy{Enabled: true, ChunkSize: 500, Overlap: 50})

	claims, err := e.Extract(context.Background(), text, "")
	require.Error(t, err)
	require.Equal(t, claimerr.KindProviderFatal, claimerr.Of(err))
	require.Len(t, claims, 1, "claims parsed before the fatal chunk are still returned")
}

func TestChunksLargeTextOnSentenceBoundaries(t *testing.T) {
	sentence := "Năng suất lúa đạt cao trong vụ mùa này. "
	text := strings.Repeat(sentence, 200)

	llm := &stubCompleter{}
	e := extractor.New(llm, nil, nil, extractor.Policy{Enabled: true, ChunkSize: 500, Overlap: 50})
	_, err := e.Extract(context.Background(), text, "")
	require.NoError(t, err)
	require.Greater(t, llm.calls, 1, "text longer than chunk size must be split into multiple LLM calls")
}

func TestRetriesOnceOnRateLimitThenGivesUp(t *testing.T) {
	llm := &stubCompleter{
		errs: []error{claimerr.NewRateLimited("rate limited", nil, time.Millisecond), claimerr.NewRateLimited("rate limited again", nil, time.Millisecond)},
	}
	noSleep := extractor.WithSleep(func(ctx context.Context, d time.Duration) error { return nil })
	e := extractor.New(llm, nil, nil, extractor.DefaultPolicy, noSleep)

	claims, err := e.Extract(context.Background(), "text", "")
	require.NoError(t, err)
	require.Empty(t, claims)
	require.Equal(t, 2, llm.calls, "exactly one retry after the first rate-limit failure")
}
