// Package judge implements the pairwise claim comparator: a
// decision ladder that short-circuits through cheap rules before ever
// reaching for the LLM, backed by a content-addressed cache so a pair
// is never judged by the model twice.
package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vnagri/claimfusion/internal/breaker"
	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/claim"
	"github.com/vnagri/claimfusion/internal/claimerr"
	"github.com/vnagri/claimfusion/internal/global"
	"github.com/vnagri/claimfusion/internal/ratelimit"
	"github.com/vnagri/claimfusion/internal/telemetry"
)

var errNoJSONObject = errors.New("judge: no JSON object found in LLM response")

const systemPrompt = `Bạn là một trợ lý xác minh sự kiện nông nghiệp. So sánh hai khẳng định và trả lời DUY NHẤT một đối tượng JSON với các trường:
{"relation": "SUPPORTED"|"CONTRADICTED"|"NEUTRAL", "confidence": 0.0-1.0, "reasoning": "..."}
SUPPORTED nếu hai khẳng định ủng hộ lẫn nhau, CONTRADICTED nếu chúng mâu thuẫn, NEUTRAL nếu không liên quan.`

// CosineSupportedThreshold is the embedding-similarity threshold above
// which two claims' objects are considered SUPPORTED without an LLM
// call.
const CosineSupportedThreshold = 0.95

// StringSupportedThreshold is the Levenshtein-similarity fallback
// threshold used when embeddings are unavailable.
const StringSupportedThreshold = 0.9

// Judge compares pairs of claims via a decision ladder, consulting a
// cache, an optional embedder, and falling back to an LLM call guarded
// by the shared rate limiter and circuit breaker.
type Judge struct {
	llm      capability.Completer
	embedder capability.Embedder
	cache    capability.JudgeCache
	limiter  *ratelimit.Limiter
	breaker  *breaker.Breaker
}

// New builds a Judge. embedder and cache may be nil: a nil embedder
// downgrades rule 4 to rule 5 (string similarity); a nil cache disables
// caching entirely.
func New(llm capability.Completer, embedder capability.Embedder, cache capability.JudgeCache, limiter *ratelimit.Limiter, brk *breaker.Breaker) *Judge {
	return &Judge{llm: llm, embedder: embedder, cache: cache, limiter: limiter, breaker: brk}
}

// Compare runs the decision ladder over a and b and returns a Judgment.
// It never returns an error for "the LLM failed" — those failures
// degrade to the lexical fallback or a low-confidence NEUTRAL, so that
// one bad pair must not poison a batch.
func (j *Judge) Compare(ctx context.Context, a, b claim.Claim) (Judgment, error) {
	key := CacheKey(a, b)

	if j.cache != nil {
		if cached, ok := j.lookupCache(ctx, key); ok {
			telemetry.JudgeCacheHits.WithLabelValues("hit").Inc()
			cached.FromCache = true
			return cached, nil
		}
		telemetry.JudgeCacheHits.WithLabelValues("miss").Inc()
	}

	if a.SubjectKey() != b.SubjectKey() || a.PredicateKey() != b.PredicateKey() {
		return Judgment{Relation: Neutral, Confidence: 1.0, Reasoning: "different subject or predicate"}, nil
	}

	objA, objB := strings.TrimSpace(a.Object), strings.TrimSpace(b.Object)
	if objA != "" && objB != "" && a.ObjectKey() == b.ObjectKey() {
		verdict := Judgment{Relation: Supported, Confidence: 1.0, Reasoning: "identical object value"}
		j.store(ctx, key, verdict)
		return verdict, nil
	}

	if j.embedder != nil {
		if sim, ok := j.embeddingSimilarity(ctx, objA, objB); ok && sim > CosineSupportedThreshold {
			verdict := Judgment{Relation: Supported, Confidence: sim, Reasoning: "high embedding similarity"}
			j.store(ctx, key, verdict)
			return verdict, nil
		}
	} else if sim := stringSimilarity(objA, objB); sim > StringSupportedThreshold {
		verdict := Judgment{Relation: Supported, Confidence: sim, Reasoning: "high string similarity"}
		j.store(ctx, key, verdict)
		return verdict, nil
	}

	verdict := j.compareViaLLM(ctx, a, b, objA, objB)
	j.store(ctx, key, verdict)
	return verdict, nil
}

func (j *Judge) lookupCache(ctx context.Context, key string) (Judgment, bool) {
	data, ok, err := j.cache.Get(ctx, key)
	if err != nil || !ok {
		return Judgment{}, false
	}
	var verdict Judgment
	if err := extractJSONObject(string(data), &verdict); err != nil {
		return Judgment{}, false
	}
	return verdict, true
}

func (j *Judge) store(ctx context.Context, key string, verdict Judgment) {
	if j.cache == nil {
		return
	}
	data := fmt.Sprintf(`{"relation":%q,"confidence":%g,"reasoning":%q}`, verdict.Relation, verdict.Confidence, verdict.Reasoning)
	_ = j.cache.Set(ctx, key, []byte(data))
}

func (j *Judge) embeddingSimilarity(ctx context.Context, objA, objB string) (float64, bool) {
	vecs, err := j.embedder.Embed(ctx, []string{objA, objB})
	if err != nil || len(vecs) != 2 {
		return 0, false
	}
	return cosine(vecs[0], vecs[1]), true
}

// compareViaLLM invokes the LLM under rate-limiter/breaker control and
// falls back to the lexical map or a low-confidence NEUTRAL on any
// failure.
func (j *Judge) compareViaLLM(ctx context.Context, a, b claim.Claim, objA, objB string) Judgment {
	if j.llm == nil {
		return lexicalFallback(objA, objB)
	}
	if j.breaker != nil {
		telemetry.BreakerState.WithLabelValues("judge").Set(float64(j.breaker.State()))
		if err := j.breaker.Allow(); err != nil {
			global.Logger.Debug().Err(err).Msg("judge: breaker open, skipping LLM call")
			return lexicalFallback(objA, objB)
		}
	}
	if j.limiter != nil {
		if err := j.limiter.Wait(ctx); err != nil {
			return lexicalFallback(objA, objB)
		}
		telemetry.RateLimiterQueueDepth.WithLabelValues("judge").Set(float64(j.limiter.Len()))
	}

	userPrompt := fmt.Sprintf(
		"Khẳng định 1: %s %s %s (Bối cảnh: %s)\nKhẳng định 2: %s %s %s (Bối cảnh: %s)",
		a.Subject, a.Predicate, a.Object, a.Context,
		b.Subject, b.Predicate, b.Object, b.Context,
	)

	raw, err := j.llm.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		if j.breaker != nil {
			j.breaker.Failure(claimerr.Of(err) == claimerr.KindProviderRateLimited)
			telemetry.BreakerState.WithLabelValues("judge").Set(float64(j.breaker.State()))
		}
		global.Logger.Warn().Err(err).Msg("judge: LLM call failed")
		return lexicalFallback(objA, objB)
	}
	if j.breaker != nil {
		j.breaker.Success()
		telemetry.BreakerState.WithLabelValues("judge").Set(float64(j.breaker.State()))
	}

	var verdict Judgment
	if err := extractJSONObject(raw, &verdict); err != nil {
		return lexicalFallback(objA, objB)
	}
	if verdict.Relation != Supported && verdict.Relation != Contradicted && verdict.Relation != Neutral {
		return lexicalFallback(objA, objB)
	}
	return verdict
}

func lexicalFallback(objA, objB string) Judgment {
	if lexicalContradiction(objA, objB) {
		return Judgment{Relation: Contradicted, Confidence: 0.7, Reasoning: "lexical contradiction map match"}
	}
	return Judgment{Relation: Neutral, Confidence: 0.3, Reasoning: "no signal available"}
}
