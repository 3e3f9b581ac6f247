package validator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/extractor"
	"github.com/vnagri/claimfusion/internal/resolver"
	"github.com/vnagri/claimfusion/internal/validator"
)

type stubCompleter struct {
	response string
}

func (s stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.response, nil
}

func newValidator(t *testing.T, llmResponse string) *validator.Validator {
	t.Helper()
	ex := extractor.New(stubCompleter{response: llmResponse}, nil, nil, extractor.DefaultPolicy)
	res := resolver.New(nil)
	return validator.New(ex, nil, nil, res)
}

// S5 — consistent article.
func TestValidateConsistentArticle(t *testing.T) {
	article := "# Báo cáo giống lúa ST25\n\nGiống lúa ST25 đạt năng suất cao và chất lượng tốt."
	llmResponse := `[
		{"subject":"Lúa ST25","predicate":"Năng suất","object":"8.5 tấn/ha","context":"","confidence":0.9},
		{"subject":"Lúa ST25","predicate":"Chất lượng","object":"Gạo ngon","context":"","confidence":0.8},
		{"subject":"Lúa ST25","predicate":"Khả năng chống chịu","object":"Kháng mặn","context":"","confidence":0.75}
	]`
	v := newValidator(t, llmResponse)

	report := v.Validate(context.Background(), article, false)
	require.True(t, report.Success)
	require.Equal(t, "Báo cáo giống lúa ST25", report.ArticleTitle)
	require.Len(t, report.ResolvedClaims, 3)
	require.GreaterOrEqual(t, report.ValidationScore, 0.6)
	require.Empty(t, report.Warnings)
}

// S6 — self-contradicting article.
func TestValidateSelfContradictingArticle(t *testing.T) {
	article := "# Giải thưởng gạo ST25\n\nGạo ST25 đạt Giải nhất cuộc thi. Một số nguồn ghi nhận Giải khuyến khích."
	llmResponse := `[
		{"subject":"Gạo ST25","predicate":"Giải thưởng","object":"Giải nhất","context":"","confidence":0.9},
		{"subject":"Gạo ST25","predicate":"Giải thưởng","object":"Giải khuyến khích","context":"","confidence":0.6}
	]`
	v := newValidator(t, llmResponse)

	report := v.Validate(context.Background(), article, false)
	require.True(t, report.Success)
	require.LessOrEqual(t, len(report.ResolvedClaims), 2)

	hasContradiction := false
	for _, r := range report.ResolvedClaims {
		if r.HasContradictions {
			hasContradiction = true
		}
	}
	require.True(t, hasContradiction)

	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "mâu thuẫn phát hiện") && strings.Contains(w, "Giải nhất") && strings.Contains(w, "Giải khuyến khích") {
			found = true
		}
	}
	require.True(t, found, "expected a warning naming both object strings, got %v", report.Warnings)
}

func TestValidateEmptyArticleSucceedsWithNoClaims(t *testing.T) {
	v := newValidator(t, "[]")
	report := v.Validate(context.Background(), "# Trống\n", false)
	require.True(t, report.Success)
	require.Empty(t, report.ArticleClaims)
	require.Equal(t, 0.0, report.ValidationScore)
}

func TestValidateMarkdownArticleExtractsTitle(t *testing.T) {
	article := "# Tiêu đề\n\n**Đậm** và _nghiêng_, [liên kết](https://example.com).\n\n- mục 1\n- mục 2\n\n> trích dẫn\n\n```go\ncode\n```\n\n---\nauthor: x\ndate: y\n"
	v := newValidator(t, "[]")
	report := v.Validate(context.Background(), article, false)
	require.Equal(t, "Tiêu đề", report.ArticleTitle)
	require.True(t, report.Success)
}
