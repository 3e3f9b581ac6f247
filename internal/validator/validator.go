// Package validator implements the article validator: it extracts
// claims from an article's own text and, optionally, cross-checks a
// curated set of "important" predicates against claims gathered from a
// fresh web search, then fuses everything through the Resolver and
// scores the result.
package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vnagri/claimfusion/internal/claim"
	"github.com/vnagri/claimfusion/internal/claimerr"
	"github.com/vnagri/claimfusion/internal/extractor"
	"github.com/vnagri/claimfusion/internal/judge"
	"github.com/vnagri/claimfusion/internal/resolver"
	"github.com/vnagri/claimfusion/internal/workflow"
)

// importantPredicates is the curated set of predicates worth cross-
// checking against the web when useWebValidation is set:
// authorship/origin claims and award/achievement claims are the ones
// most often inflated or misattributed in agricultural press articles.
var importantPredicates = map[string]struct{}{
	"tác giả":     {},
	"xuất xứ":     {},
	"nguồn gốc":   {},
	"giải thưởng": {},
	"thành tích":  {},
	"chứng nhận":  {},
}

func isImportantPredicate(predicate string) bool {
	_, ok := importantPredicates[strings.ToLower(strings.TrimSpace(predicate))]
	return ok
}

// WebJudgment records one pairwise comparison made during web
// cross-validation.
type WebJudgment struct {
	ArticleClaim claim.Claim
	WebClaim     claim.Claim
	Relation     judge.Relation
	Confidence   float64
	Reasoning    string
}

// Report is the Validator's output.
type Report struct {
	Success         bool
	ArticleTitle    string
	ArticleClaims   []claim.Claim
	ResolvedClaims  []resolver.ResolvedClaim
	ValidationScore float64
	WebValidation   []WebJudgment
	Warnings        []string
	Errors          []string
}

// Validator wires the extractor, an optional Workflow for web
// cross-validation, the pairwise Judge, and the Resolver.
type Validator struct {
	extractor *extractor.Extractor
	workflow  *workflow.Workflow
	judge     *judge.Judge
	resolver  *resolver.Resolver
}

// New builds a Validator. wf and j may be nil: useWebValidation is then
// forced off regardless of the caller's request.
func New(ex *extractor.Extractor, wf *workflow.Workflow, j *judge.Judge, res *resolver.Resolver) *Validator {
	return &Validator{extractor: ex, workflow: wf, judge: j, resolver: res}
}

// Validate extracts claims from article, resolves them, optionally
// cross-checks against a fresh web search, and scores the result.
func (v *Validator) Validate(ctx context.Context, article string, useWebValidation bool) Report {
	title, plain := stripMarkdown(article)

	articleClaims, err := v.extractor.Extract(ctx, plain, "")
	if err != nil {
		return fatalReport(title, err)
	}

	var webClaims []claim.Claim
	var webJudgments []WebJudgment
	var warnings []string

	if useWebValidation && v.workflow != nil && v.judge != nil {
		subject := mostFrequentSubject(articleClaims)
		if subject == "" {
			subject = title
		}
		if subject != "" {
			st, err := v.workflow.Run(ctx, subject, subject)
			if err != nil {
				if claimerr.Of(err) == claimerr.KindProviderFatal {
					return fatalReport(title, err)
				}
			} else {
				webClaims = st.Claims
				webJudgments, warnings = v.crossCheck(ctx, articleClaims, webClaims)
			}
		}
	}

	union := append(append([]claim.Claim{}, articleClaims...), webClaims...)
	resolved, err := v.resolver.Resolve(ctx, union)
	if err != nil {
		return fatalReport(title, err)
	}

	warnings = append(warnings, heuristicWarnings(articleClaims, resolved)...)

	return Report{
		Success:         true,
		ArticleTitle:    title,
		ArticleClaims:   articleClaims,
		ResolvedClaims:  resolved,
		ValidationScore: validationScore(resolved),
		WebValidation:   webJudgments,
		Warnings:        warnings,
	}
}

func fatalReport(title string, err error) Report {
	return Report{
		Success:      false,
		ArticleTitle: title,
		Errors:       []string{err.Error()},
	}
}

// mostFrequentSubject picks the subject appearing most often among
// claims, ties broken by first occurrence.
func mostFrequentSubject(claims []claim.Claim) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range claims {
		key := c.SubjectKey()
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	best := ""
	bestCount := 0
	bestSubject := ""
	for _, key := range order {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	for _, c := range claims {
		if c.SubjectKey() == best {
			bestSubject = c.Subject
			break
		}
	}
	return bestSubject
}

// crossCheck pairwise-judges every article claim on an important
// predicate against web claims sharing its (subject, predicate) group,
// recording every judgment and a warning for every contradiction
//.
func (v *Validator) crossCheck(ctx context.Context, articleClaims, webClaims []claim.Claim) ([]WebJudgment, []string) {
	if v.judge == nil {
		return nil, nil
	}

	byGroup := make(map[claim.GroupKey][]claim.Claim)
	for _, c := range webClaims {
		byGroup[c.GroupKey()] = append(byGroup[c.GroupKey()], c)
	}

	var judgments []WebJudgment
	var warnings []string
	for _, a := range articleClaims {
		if !isImportantPredicate(a.Predicate) {
			continue
		}
		for _, w := range byGroup[a.GroupKey()] {
			verdict, err := v.judge.Compare(ctx, a, w)
			if err != nil {
				continue
			}
			judgments = append(judgments, WebJudgment{
				ArticleClaim: a, WebClaim: w,
				Relation: verdict.Relation, Confidence: verdict.Confidence, Reasoning: verdict.Reasoning,
			})
			if verdict.Relation == judge.Contradicted {
				warnings = append(warnings, fmt.Sprintf("mâu thuẫn phát hiện giữa bài viết và nguồn web: %q vs %q", a.Object, w.Object))
			}
		}
	}
	return judgments, warnings
}

// validationScore combines mean gold-claim confidence with mean
// normalized cluster score.
func validationScore(resolved []resolver.ResolvedClaim) float64 {
	if len(resolved) == 0 {
		return 0.0
	}

	var confSum, scoreSum float64
	maxScore := 0.0
	for _, r := range resolved {
		confSum += r.GoldClaim.Confidence
		if r.TotalScore > maxScore {
			maxScore = r.TotalScore
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}
	for _, r := range resolved {
		scoreSum += r.TotalScore / maxScore
	}

	meanConf := confSum / float64(len(resolved))
	meanScore := scoreSum / float64(len(resolved))
	return 0.6*meanConf + 0.4*meanScore
}

// heuristicWarnings flags any ResolvedClaim carrying a contradiction,
// extractor claims below confidence 0.5, and more than 50% of extractor
// claims having an empty object.
func heuristicWarnings(articleClaims []claim.Claim, resolved []resolver.ResolvedClaim) []string {
	var warnings []string

	for _, r := range resolved {
		if r.HasContradictions {
			warnings = append(warnings, fmt.Sprintf("mâu thuẫn phát hiện: %s – %s có nhiều giá trị không nhất quán (%s)",
				r.GoldClaim.Subject, r.GoldClaim.Predicate, strings.Join(r.ClusterValues, ", ")))
		}
	}

	lowConfidence := 0
	emptyObject := 0
	for _, c := range articleClaims {
		if c.Confidence < 0.5 {
			lowConfidence++
		}
		if c.Object == "" {
			emptyObject++
		}
	}
	if lowConfidence > 0 {
		warnings = append(warnings, fmt.Sprintf("%d khẳng định có độ tin cậy dưới 0.5", lowConfidence))
	}
	if len(articleClaims) > 0 && float64(emptyObject)/float64(len(articleClaims)) > 0.5 {
		warnings = append(warnings, "hơn một nửa số khẳng định không có giá trị cụ thể (object rỗng)")
	}

	sort.Strings(warnings)
	return warnings
}
