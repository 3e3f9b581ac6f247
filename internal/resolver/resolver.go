// Package resolver implements the fusion engine: it groups claims
// by (subject, predicate), clusters each group into candidate facts,
// scores clusters by source trust and recency, elects a gold claim per
// group, and flags contradictions within the winning cluster.
package resolver

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/claim"
	"github.com/vnagri/claimfusion/internal/global"
	"github.com/vnagri/claimfusion/internal/judge"
	"github.com/vnagri/claimfusion/internal/telemetry"
	"github.com/vnagri/claimfusion/internal/trust"
)

// ContradictionDetail records one CONTRADICTED pairwise judgment found
// within a winning cluster.
type ContradictionDetail struct {
	Claim1     claim.Claim
	Claim2     claim.Claim
	Reasoning  string
	Confidence float64
}

// ResolvedClaim is the fused output for one (subject, predicate) group.
type ResolvedClaim struct {
	GoldClaim            claim.Claim
	SupportURLs          []string
	TotalScore           float64
	ClusterValues        []string
	HasContradictions    bool
	ContradictionDetails []ContradictionDetail
}

// MaxContradictionWorkers bounds the parallelism of pairwise Judge calls
// within a single winning cluster.
const MaxContradictionWorkers = 4

// Resolver fuses a bag of claims into one ResolvedClaim per
// (subject, predicate) group.
type Resolver struct {
	judge    *judge.Judge
	embedder capability.Embedder
	now      func() time.Time
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithEmbedder supplies the Embedder used for non-numeric semantic
// clustering. Without it, non-numeric clustering falls
// back to case-folded exact match.
func WithEmbedder(embedder capability.Embedder) Option {
	return func(r *Resolver) { r.embedder = embedder }
}

// WithClock overrides the time source used for the current-year
// recency check, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New builds a Resolver. j may be nil: contradiction flagging then
// falls back to the "more than one distinct object value" heuristic
//.
func New(j *judge.Judge, opts ...Option) *Resolver {
	r := &Resolver{judge: j, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve groups, clusters, scores, and elects a gold claim per group,
// returning one ResolvedClaim per (subject, predicate) group in
// first-encountered order.
func (r *Resolver) Resolve(ctx context.Context, claims []claim.Claim) ([]ResolvedClaim, error) {
	if len(claims) == 0 {
		return nil, nil
	}

	order, groups := groupBy(claims)

	out := make([]ResolvedClaim, 0, len(order))
	for _, key := range order {
		clusterCtx, span := telemetry.StartSpan(ctx, "resolver.cluster")
		out = append(out, r.resolveGroup(clusterCtx, groups[key])...)
		span.End()
	}

	return out, nil
}

// resolveGroup clusters one (subject, predicate) group, scores and
// elects its winning cluster, and flags contradictions within it. It
// returns zero or one ResolvedClaim.
func (r *Resolver) resolveGroup(ctx context.Context, group []claim.Claim) []ResolvedClaim {
	clusters := clusterGroup(ctx, group, r.embedder)
	if len(clusters) == 0 {
		return nil
	}

	scores := make([]float64, len(clusters))
	for i, c := range clusters {
		scores[i] = r.scoreCluster(c)
	}

	winner := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[winner] {
			winner = i
		}
	}

	gold := electGold(clusters[winner])
	hasContradiction, details := r.flagContradictions(ctx, clusters[winner])

	return []ResolvedClaim{{
		GoldClaim:            gold,
		SupportURLs:          supportURLs(clusters[winner]),
		TotalScore:           scores[winner],
		ClusterValues:        clusterValues(clusters[winner]),
		HasContradictions:    hasContradiction,
		ContradictionDetails: details,
	}}
}

func groupBy(claims []claim.Claim) ([]claim.GroupKey, map[claim.GroupKey][]claim.Claim) {
	var order []claim.GroupKey
	groups := make(map[claim.GroupKey][]claim.Claim)
	for _, c := range claims {
		key := c.GroupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}
	return order, groups
}

// scoreCluster sums trust(sourceUrl) * timeWeight(context) over the
// cluster's members.
func (r *Resolver) scoreCluster(c cluster) float64 {
	var total float64
	for _, m := range c.members {
		total += trust.Score(m.SourceURL) * r.timeWeight(m.Context)
	}
	return total
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// timeWeight returns 1.2 if a 4-digit year in [1900,2100] parsed from
// context equals the current year, else 1.0.
func (r *Resolver) timeWeight(context string) float64 {
	for _, m := range yearPattern.FindAllString(context, -1) {
		y, err := strconv.Atoi(m)
		if err != nil || y < 1900 || y > 2100 {
			continue
		}
		if y == r.now().Year() {
			return 1.2
		}
		break
	}
	return 1.0
}

// electGold chooses the representative member of the winning cluster
//: for a numeric cluster, the member closest to the
// cluster's mean value (ties, within floating-point tolerance, go to the
// earlier member in input order); for a non-numeric cluster, the member
// maximizing confidence + 0.1*trust(sourceUrl).
func electGold(c cluster) claim.Claim {
	if c.numeric {
		var sum float64
		for _, m := range c.members {
			v, _ := parseNumeric(m.Object)
			sum += v
		}
		mean := sum / float64(len(c.members))
		tol := 1e-9 * abs(mean)

		best := c.members[0]
		bestV, _ := parseNumeric(best.Object)
		bestDist := abs(bestV - mean)
		for _, m := range c.members[1:] {
			v, _ := parseNumeric(m.Object)
			if d := abs(v - mean); d < bestDist-tol {
				best, bestDist = m, d
			}
		}
		return best
	}

	best := c.members[0]
	bestScore := best.Confidence + 0.1*trust.Score(best.SourceURL)
	for _, m := range c.members[1:] {
		score := m.Confidence + 0.1*trust.Score(m.SourceURL)
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

func supportURLs(c cluster) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range c.members {
		if m.SourceURL == "" {
			continue
		}
		if _, ok := seen[m.SourceURL]; ok {
			continue
		}
		seen[m.SourceURL] = struct{}{}
		out = append(out, m.SourceURL)
	}
	return out
}

func clusterValues(c cluster) []string {
	out := make([]string, 0, len(c.members))
	for _, m := range c.members {
		if m.Object != "" {
			out = append(out, m.Object)
		}
	}
	return out
}

// flagContradictions runs the pairwise Judge over all C(n,2) pairs in
// the winning cluster, bounded by MaxContradictionWorkers concurrent
// calls. Without a Judge it falls back to "more than
// one distinct case-folded object value present".
func (r *Resolver) flagContradictions(ctx context.Context, c cluster) (bool, []ContradictionDetail) {
	if r.judge == nil {
		return fallbackContradiction(c), nil
	}
	if len(c.members) < 2 {
		return false, nil
	}

	type pair struct{ i, j int }
	var pairs []pair
	for i := 0; i < len(c.members); i++ {
		for j := i + 1; j < len(c.members); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	var mu sync.Mutex
	var details []ContradictionDetail
	sem := make(chan struct{}, MaxContradictionWorkers)
	var wg sync.WaitGroup

	for _, p := range pairs {
		wg.Add(1)
		sem <- struct{}{}
		go func(p pair) {
			defer wg.Done()
			defer func() { <-sem }()

			a, b := c.members[p.i], c.members[p.j]
			verdict, err := r.judge.Compare(ctx, a, b)
			if err != nil {
				global.Logger.Warn().Err(err).Msg("resolver: pairwise judge call failed")
				return
			}
			if verdict.Relation == judge.Contradicted {
				mu.Lock()
				details = append(details, ContradictionDetail{
					Claim1: a, Claim2: b,
					Reasoning:  verdict.Reasoning,
					Confidence: verdict.Confidence,
				})
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	sort.Slice(details, func(i, j int) bool {
		return details[i].Claim1.Object+details[i].Claim2.Object < details[j].Claim1.Object+details[j].Claim2.Object
	})

	return len(details) > 0, details
}

// fallbackContradiction applies only to non-numeric clusters: numeric
// members were already admitted by the 5%-relative-distance tolerance,
// so distinct literal object strings among them reflect agreement, not
// disagreement.
func fallbackContradiction(c cluster) bool {
	if c.numeric {
		return false
	}
	seen := make(map[string]struct{})
	for _, m := range c.members {
		if m.Object == "" {
			continue
		}
		seen[m.ObjectKey()] = struct{}{}
	}
	return len(seen) > 1
}
