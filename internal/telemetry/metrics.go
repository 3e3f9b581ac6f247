// Package telemetry wires the process-wide Prometheus registry and
// OpenTelemetry tracer the rest of the pipeline reports into.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BreakerState reports the circuit breaker's current state per
// component (0=closed, 1=open, 2=half_open), matching breaker.State's
// own ordering.
var BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "claimfusion_breaker_state",
	Help: "Current circuit breaker state (0=closed, 1=open, 2=half_open) per component.",
}, []string{"component"})

// RateLimiterQueueDepth reports Limiter.Len per component: the number
// of admissions counted within the limiter's trailing window.
var RateLimiterQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "claimfusion_ratelimiter_queue_depth",
	Help: "Number of rate limiter admissions within the trailing window per component.",
}, []string{"component"})

// JudgeCacheHits counts judge-cache lookups by outcome ("hit" or "miss").
var JudgeCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claimfusion_judge_cache_hits_total",
	Help: "Judge cache lookups by outcome.",
}, []string{"result"})

// ExtractorClaims counts claims successfully parsed out of LLM
// responses by the extractor.
var ExtractorClaims = promauto.NewCounter(prometheus.CounterOpts{
	Name: "claimfusion_extractor_claims_total",
	Help: "Total claims extracted across all chunks and sources.",
})

// Handler exposes the default Prometheus registry for a health/metrics
// HTTP server.
func Handler() http.Handler {
	return promhttp.Handler()
}
