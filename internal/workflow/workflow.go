package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/claim"
	"github.com/vnagri/claimfusion/internal/extractor"
	"github.com/vnagri/claimfusion/internal/global"
	"github.com/vnagri/claimfusion/internal/resolver"
	"github.com/vnagri/claimfusion/internal/telemetry"
)

// Workflow wires the search -> extract -> resolve -> writer pipeline.
type Workflow struct {
	searcher          capability.Searcher
	secondarySearcher capability.Searcher
	scraper           capability.Scraper
	extractor         *extractor.Extractor
	resolver          *resolver.Resolver
	cfg               global.WorkflowConfig
}

// Option configures a Workflow at construction time.
type Option func(*Workflow)

// WithSecondarySearcher supplies a fallback Searcher tried after every
// rung of the primary searcher's query ladder comes back empty.
func WithSecondarySearcher(s capability.Searcher) Option {
	return func(w *Workflow) { w.secondarySearcher = s }
}

// New builds a Workflow. cfg's zero value falls back to
// global.DefaultWorkflowConfig.
func New(searcher capability.Searcher, scraper capability.Scraper, ex *extractor.Extractor, res *resolver.Resolver, cfg global.WorkflowConfig, opts ...Option) *Workflow {
	if cfg.MaxURLs == 0 {
		cfg = global.DefaultWorkflowConfig()
	}
	w := &Workflow{searcher: searcher, scraper: scraper, extractor: ex, resolver: res, cfg: cfg}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes one full pipeline pass for crop/query and returns the
// resulting State. It never returns an error for partial failures
// (scrape/extract/search failures on individual sources are recorded in
// State.DebugInfo.Errors); it only returns an error if ctx is already
// cancelled on entry.
func (w *Workflow) Run(ctx context.Context, crop, query string) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "workflow.Run")
	defer span.End()

	st := &State{Crop: crop, Query: query}

	searchCtx, searchSpan := telemetry.StartSpan(ctx, "workflow.search")
	w.search(searchCtx, st)
	searchSpan.End()
	if len(st.SearchResults) == 0 {
		st.Summary = noInfoSummary
		return st, nil
	}

	extractCtx, extractSpan := telemetry.StartSpan(ctx, "workflow.extract")
	st.Claims = w.extractFromURLs(extractCtx, st)
	extractSpan.End()
	if len(st.Claims) == 0 {
		st.Summary = noInfoSummary
		return st, nil
	}

	resolveCtx, resolveSpan := telemetry.StartSpan(ctx, "workflow.resolve")
	resolved, err := w.resolver.Resolve(resolveCtx, st.Claims)
	resolveSpan.End()
	if err != nil {
		st.DebugInfo.Errors = append(st.DebugInfo.Errors, fmt.Sprintf("resolve: %v", err))
		st.Summary = noInfoSummary
		return st, nil
	}
	st.ResolvedClaims = resolved
	st.Summary = writeSummary(resolved)

	return st, nil
}

// extractFromURLs scrapes and extracts claims from each candidate URL
// with bounded parallelism, recording per-URL failures as
// non-fatal debug errors.
func (w *Workflow) extractFromURLs(ctx context.Context, st *State) []claim.Claim {
	workers := w.cfg.ExtractWorkers
	if workers <= 0 {
		workers = 4
	}

	type result struct {
		claims []claim.Claim
		err    error
		url    string
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	results := make([]result, len(st.SearchResults))

	for i, u := range st.SearchResults {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()

			text, err := w.scraper.Scrape(ctx, u)
			if err != nil {
				results[i] = result{err: fmt.Errorf("scrape %s: %w", u, err), url: u}
				return
			}
			claims, err := w.extractor.Extract(ctx, text, u)
			if err != nil {
				results[i] = result{err: fmt.Errorf("extract %s: %w", u, err), url: u}
				return
			}
			results[i] = result{claims: claims, url: u}
		}(i, u)
	}
	wg.Wait()

	var out []claim.Claim
	for _, r := range results {
		if r.err != nil {
			st.DebugInfo.Errors = append(st.DebugInfo.Errors, r.err.Error())
			continue
		}
		out = append(out, r.claims...)
	}
	return out
}

const noInfoSummary = "Không tìm thấy thông tin đáng tin cậy cho truy vấn này."

// writeSummary renders one line per ResolvedClaim in the documented
// plain-text format:
//
//	subject – predicate: object (Bối cảnh: context) Nguồn: url1, url2, url3
func writeSummary(resolved []resolver.ResolvedClaim) string {
	if len(resolved) == 0 {
		return noInfoSummary
	}

	var lines []string
	for _, rc := range resolved {
		c := rc.GoldClaim
		line := fmt.Sprintf("%s – %s: %s", c.Subject, c.Predicate, c.Object)
		if c.Context != "" {
			line += fmt.Sprintf(" (Bối cảnh: %s)", c.Context)
		}
		urls := rc.SupportURLs
		if len(urls) > 3 {
			urls = urls[:3]
		}
		if len(urls) > 0 {
			line += fmt.Sprintf(" Nguồn: %s", strings.Join(urls, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
