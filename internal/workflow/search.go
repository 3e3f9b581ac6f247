package workflow

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/trust"
	"github.com/vnagri/claimfusion/pkgs/utils"
)

// MinTrustForSearchResult is the default trust floor URLs must clear to
// survive the search stage's filter.
const MinTrustForSearchResult = 0.3

// MaxURLs caps how many URLs reach the extract stage.
const MaxURLs = 15

// DefaultHostBlocklist names hosts the search stage drops regardless of
// trust score (known low-quality aggregators / social media noise for
// agricultural queries).
var DefaultHostBlocklist = map[string]struct{}{
	"facebook.com":  {},
	"youtube.com":   {},
	"pinterest.com": {},
}

// queryCandidate is one rung of the fallback ladder.
type queryCandidate struct {
	query    string
	region   string
	searcher capability.Searcher
}

// candidateQueries builds the documented fallback ladder: the
// given query, a simpler Vietnamese query, the crop term alone, an
// English query, a simpler English query, then the secondary provider
// repeating the same ladder if supplied.
func (w *Workflow) candidateQueries(crop, query string) []queryCandidate {
	vi := query
	if vi == "" {
		vi = fmt.Sprintf("kỹ thuật trồng %s năng suất", crop)
	}
	simpleVi := fmt.Sprintf("%s nông nghiệp", crop)
	cropOnly := crop
	en := fmt.Sprintf("%s cultivation yield technique", crop)
	simpleEn := crop

	rungs := []struct {
		query, region string
	}{
		{vi, "vn-vi"},
		{simpleVi, "vn-vi"},
		{cropOnly, "vn-vi"},
		{en, ""},
		{simpleEn, ""},
	}

	var candidates []queryCandidate
	for _, s := range rungs {
		if strings.TrimSpace(s.query) == "" {
			continue
		}
		candidates = append(candidates, queryCandidate{query: s.query, region: s.region, searcher: w.searcher})
	}
	if w.secondarySearcher != nil {
		for _, s := range rungs {
			if strings.TrimSpace(s.query) == "" {
				continue
			}
			candidates = append(candidates, queryCandidate{query: s.query, region: s.region, searcher: w.secondarySearcher})
		}
	}
	return candidates
}

// search runs the fallback ladder until a rung returns a non-empty
// result set, then filters, dedups, trust-filters, and caps the URL
// list.
func (w *Workflow) search(ctx context.Context, st *State) {
	for _, candidate := range w.candidateQueries(st.Crop, st.Query) {
		results, err := candidate.searcher.Search(ctx, candidate.query, candidate.region, w.cfg.MaxURLs)
		if err != nil {
			st.DebugInfo.Errors = append(st.DebugInfo.Errors, fmt.Sprintf("search %q: %v", candidate.query, err))
			continue
		}
		if len(results) == 0 {
			continue
		}

		urls := make([]string, 0, len(results))
		for _, r := range results {
			urls = append(urls, r.URL)
		}
		st.Query = candidate.query
		st.SearchResults = filterURLs(urls, hostBlocklistSet(w.cfg.HostBlocklist))
		return
	}
	st.SearchResults = nil
}

// hostBlocklistSet converts a configured host list into a lookup set,
// falling back to DefaultHostBlocklist when none is configured.
func hostBlocklistSet(hosts []string) map[string]struct{} {
	if len(hosts) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[strings.ToLower(h)] = struct{}{}
	}
	return set
}

// filterURLs drops invalid/blocklisted hosts, dedups preserving order,
// filters by trust >= 0.3 (keeping the dedup list if that empties it),
// and caps at MaxURLs.
func filterURLs(urls []string, blocklist map[string]struct{}) []string {
	if blocklist == nil {
		blocklist = DefaultHostBlocklist
	}

	var valid []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		if _, blocked := blocklist[strings.ToLower(u.Hostname())]; blocked {
			continue
		}
		valid = append(valid, raw)
	}

	deduped := utils.RemoveDuplicates(valid)

	trusted := make([]string, 0, len(deduped))
	for _, u := range deduped {
		if trust.Score(u) >= MinTrustForSearchResult {
			trusted = append(trusted, u)
		}
	}
	if len(trusted) == 0 {
		trusted = deduped
	}

	if len(trusted) > MaxURLs {
		trusted = trusted[:MaxURLs]
	}
	return trusted
}
