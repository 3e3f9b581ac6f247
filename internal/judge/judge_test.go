package judge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/claim"
	"github.com/vnagri/claimfusion/internal/judge"
	"github.com/vnagri/claimfusion/internal/judgecache/fscache"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}

func mustClaim(t *testing.T, subject, predicate, object, context string) claim.Claim {
	t.Helper()
	c, err := claim.New(subject, predicate, object, context, 0.8, "https://example.com")
	require.NoError(t, err)
	return c
}

func TestDifferentSubjectIsNeutral(t *testing.T) {
	j := judge.New(nil, nil, nil, nil, nil)
	a := mustClaim(t, "Lúa ST25", "Năng suất", "8 tấn/ha", "")
	b := mustClaim(t, "Lúa OM5451", "Năng suất", "8 tấn/ha", "")

	verdict, err := j.Compare(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, judge.Neutral, verdict.Relation)
	require.Equal(t, 1.0, verdict.Confidence)
}

func TestIdenticalObjectIsSupported(t *testing.T) {
	j := judge.New(nil, nil, nil, nil, nil)
	a := mustClaim(t, "Lúa ST25", "Năng suất", "8.5 tấn/ha", "")
	b := mustClaim(t, "lúa st25", "năng suất", "8.5 TẤN/HA", "")

	verdict, err := j.Compare(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, judge.Supported, verdict.Relation)
	require.Equal(t, 1.0, verdict.Confidence)
}

func TestEmbeddingSimilaritySupports(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"8.5 tấn/ha": {1, 0, 0},
		"8.6 tấn/ha": {0.999, 0.02, 0},
	}}
	j := judge.New(nil, embedder, nil, nil, nil)
	a := mustClaim(t, "Lúa ST25", "Năng suất", "8.5 tấn/ha", "")
	b := mustClaim(t, "Lúa ST25", "Năng suất", "8.6 tấn/ha", "")

	verdict, err := j.Compare(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, judge.Supported, verdict.Relation)
}

func TestLLMVerdictIsCached(t *testing.T) {
	cache, err := fscache.New(t.TempDir())
	require.NoError(t, err)
	llm := &stubCompleter{response: `{"relation":"CONTRADICTED","confidence":0.9,"reasoning":"mismatch"}`}

	j := judge.New(llm, nil, cache, nil, nil)
	a := mustClaim(t, "Gạo ST25", "Giải thưởng", "Giải nhất", "")
	b := mustClaim(t, "Gạo ST25", "Giải thưởng", "Giải khuyến khích", "")

	v1, err := j.Compare(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, judge.Contradicted, v1.Relation)
	require.False(t, v1.FromCache)
	require.Equal(t, 1, llm.calls)

	v2, err := j.Compare(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, judge.Contradicted, v2.Relation)
	require.True(t, v2.FromCache)
	require.Equal(t, 1, llm.calls, "second call must be served from cache")
}

func TestLLMFailureFallsBackToLexicon(t *testing.T) {
	llm := &stubCompleter{err: context.DeadlineExceeded}
	j := judge.New(llm, nil, nil, nil, nil)

	a := mustClaim(t, "Gạo ST25", "Giải thưởng", "Giải nhất", "")
	b := mustClaim(t, "Gạo ST25", "Giải thưởng", "Giải khuyến khích", "")

	verdict, err := j.Compare(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, judge.Contradicted, verdict.Relation)
	require.Equal(t, 0.7, verdict.Confidence)
}

func TestMalformedLLMResponseFallsBackToNeutral(t *testing.T) {
	llm := &stubCompleter{response: "not json at all"}
	j := judge.New(llm, nil, nil, nil, nil)

	a := mustClaim(t, "Lúa ST25", "Năng suất", "cao", "")
	b := mustClaim(t, "Lúa ST25", "Năng suất", "thấp", "")

	verdict, err := j.Compare(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, judge.Neutral, verdict.Relation)
	require.Equal(t, 0.3, verdict.Confidence)
}
