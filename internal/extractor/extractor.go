// Package extractor implements the claim extractor: it chunks a
// text blob, prompts the LLM once per chunk for a JSON array of
// candidate claims, and merges the per-chunk results into a
// deduplicated claim list.
package extractor

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/vnagri/claimfusion/internal/breaker"
	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/claim"
	"github.com/vnagri/claimfusion/internal/claimerr"
	"github.com/vnagri/claimfusion/internal/global"
	"github.com/vnagri/claimfusion/internal/ratelimit"
	"github.com/vnagri/claimfusion/internal/telemetry"
)

// Policy controls chunking behavior.
type Policy struct {
	Enabled   bool
	ChunkSize int
	Overlap   int
}

// DefaultPolicy is the chunking policy used when none is configured.
var DefaultPolicy = Policy{Enabled: true, ChunkSize: 3000, Overlap: 200}

const systemPrompt = `Bạn là một công cụ trích xuất khẳng định nông nghiệp. Đọc đoạn văn bản sau và trả lời DUY NHẤT một mảng JSON các đối tượng, mỗi đối tượng có các trường:
{"subject": "...", "predicate": "...", "object": "...", "context": "...", "confidence": 0.0-1.0}
Trích xuất CÀNG NHIỀU khẳng định càng tốt, kể cả nhiều khẳng định trong cùng một câu. Nếu không có khẳng định nào, trả về [].`

const (
	backoffBase      = 60 * time.Second
	backoffJitterMax = 20 * time.Second
	maxRetriesPerChunk = 1
)

// Extractor turns text into Claims via per-chunk LLM calls guarded by a
// shared rate limiter and circuit breaker.
type Extractor struct {
	llm     capability.Completer
	limiter *ratelimit.Limiter
	breaker *breaker.Breaker
	policy  Policy
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures an Extractor at construction time.
type Option func(*Extractor)

// WithSleep overrides the backoff sleep function, for deterministic
// tests of the retry path without waiting out real backoff durations.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Extractor) { e.sleep = sleep }
}

// New builds an Extractor. A zero Policy is replaced by DefaultPolicy.
func New(llm capability.Completer, limiter *ratelimit.Limiter, brk *breaker.Breaker, policy Policy, opts ...Option) *Extractor {
	if policy.ChunkSize == 0 {
		policy = DefaultPolicy
	}
	e := &Extractor{llm: llm, limiter: limiter, breaker: brk, policy: policy, sleep: ctxSleep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ctxSleep sleeps for d or returns early with ctx.Err() if ctx is
// cancelled first.
func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// rawClaim mirrors the JSON shape the LLM is asked to emit.
type rawClaim struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Context    string  `json:"context"`
	Confidence float64 `json:"confidence"`
}

// Extract runs the chunking + per-chunk extraction + dedup pipeline
// over text, stamping sourceURL onto every resulting Claim. text ==
// "" returns an empty, successful result.
func (e *Extractor) Extract(ctx context.Context, text, sourceURL string) ([]claim.Claim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var chunks []string
	if e.policy.Enabled {
		chunks = chunkText(text, e.policy.ChunkSize, e.policy.Overlap)
	} else {
		chunks = []string{text}
	}

	seen := make(map[claim.DedupKey]struct{})
	var out []claim.Claim

	for _, ch := range chunks {
		claims, err := e.extractChunk(ctx, ch, sourceURL)
		if err != nil {
			// ProviderFatal (auth failure, daily quota exhausted) will not
			// resolve by moving to the next chunk; the caller is better
			// served by an explicit abort than a silently truncated result.
			return out, err
		}
		for _, c := range claims {
			key := c.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}

	return out, nil
}

func (e *Extractor) extractChunk(ctx context.Context, text, sourceURL string) ([]claim.Claim, error) {
	if e.breaker != nil {
		telemetry.BreakerState.WithLabelValues("extractor").Set(float64(e.breaker.State()))
		if err := e.breaker.Allow(); err != nil {
			global.Logger.Debug().Err(err).Msg("extractor: breaker open, skipping chunk")
			return nil, nil
		}
	}

	raw, err := e.callWithRetry(ctx, text)
	if e.breaker != nil {
		telemetry.BreakerState.WithLabelValues("extractor").Set(float64(e.breaker.State()))
	}
	if err != nil {
		global.Logger.Warn().Err(err).Msg("extractor: chunk extraction failed")
		if claimerr.Of(err) == claimerr.KindProviderFatal {
			return nil, err
		}
		return nil, nil
	}

	claims := parseClaims(raw, sourceURL)
	telemetry.ExtractorClaims.Add(float64(len(claims)))
	return claims, nil
}

// callWithRetry invokes the LLM, retrying at most once on a rate-limit
// failure with exponential backoff plus jitter, honoring any
// server-provided retry delay by taking the max. The breaker is
// consulted again before the retry.
func (e *Extractor) callWithRetry(ctx context.Context, text string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetriesPerChunk; attempt++ {
		if attempt > 0 && e.breaker != nil {
			if err := e.breaker.Allow(); err != nil {
				return "", err
			}
		}
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return "", err
			}
			telemetry.RateLimiterQueueDepth.WithLabelValues("extractor").Set(float64(e.limiter.Len()))
		}

		resp, err := e.llm.Complete(ctx, systemPrompt, text)
		if err == nil {
			if e.breaker != nil {
				e.breaker.Success()
			}
			return resp, nil
		}

		lastErr = err
		if e.breaker != nil {
			e.breaker.Failure(claimerr.Of(err) == claimerr.KindProviderRateLimited)
		}

		if claimerr.Of(err) != claimerr.KindProviderRateLimited || attempt == maxRetriesPerChunk {
			return "", err
		}

		delay := backoffBase * time.Duration(1<<uint(attempt)) + time.Duration(rand.Int63n(int64(backoffJitterMax)))
		if hint, ok := claimerr.RetryAfter(err); ok && hint > delay {
			delay = hint
		}

		if err := e.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// parseClaims decodes raw as a JSON array of rawClaim; on failure it
// slices from the first '[' to the last ']' and retries once; on
// further failure it yields no claims.
func parseClaims(raw, sourceURL string) []claim.Claim {
	var rawClaims []rawClaim
	if err := json.Unmarshal([]byte(raw), &rawClaims); err != nil {
		start := strings.IndexByte(raw, '[')
		end := strings.LastIndexByte(raw, ']')
		if start < 0 || end <= start {
			return nil
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &rawClaims); err != nil {
			return nil
		}
	}

	out := make([]claim.Claim, 0, len(rawClaims))
	for _, rc := range rawClaims {
		c, err := claim.New(rc.Subject, rc.Predicate, rc.Object, rc.Context, rc.Confidence, sourceURL)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
