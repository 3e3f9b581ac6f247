// Package claimerr classifies pipeline failures into the kinds the
// extractor, judge, and resolver branch on (provider retry-vs-abort
// decisions, cache corruption handling), layered on pkgs/errors' HTTP-
// status-coded Error type.
package claimerr

import (
	"errors"
	"net/http"
	"time"

	pkgerrors "github.com/vnagri/claimfusion/pkgs/errors"
)

// Kind identifies why a call into an external capability failed.
type Kind string

const (
	// KindInvalidInput means the caller passed a malformed request; retrying
	// without changing the input will not help.
	KindInvalidInput Kind = "invalid_input"
	// KindProviderTransient means the upstream is temporarily unavailable
	// (timeout, 5xx, connection reset). Safe to retry.
	KindProviderTransient Kind = "provider_transient"
	// KindProviderRateLimited means the upstream rejected the call with a
	// 429 or provider-specific quota error. Safe to retry after backoff.
	KindProviderRateLimited Kind = "provider_rate_limited"
	// KindProviderFatal means the upstream rejected the call in a way that
	// will not resolve by retrying (auth failure, model not found,
	// content policy rejection).
	KindProviderFatal Kind = "provider_fatal"
	// KindCacheCorruption means a cached judgment failed to decode and was
	// discarded; the call must be redone and recached.
	KindCacheCorruption Kind = "cache_corruption"
	// KindInternal covers everything else (bugs, invariant violations).
	KindInternal Kind = "internal"
)

// internalStatusCode mirrors pkgs/errors' 520-range convention for
// domain-specific, non-HTTP-native error codes.
const (
	codeProviderTransient = iota + 560
	codeProviderRateLimited
	codeProviderFatal
	codeCacheCorruption
)

// New builds a *pkgerrors.Error tagged with kind, wrapping cause.
func New(kind Kind, message string, cause error) *pkgerrors.Error {
	var httpSC, internalSC int
	switch kind {
	case KindInvalidInput:
		httpSC, internalSC = http.StatusBadRequest, pkgerrors.ECBadRequest
	case KindProviderRateLimited:
		httpSC, internalSC = http.StatusTooManyRequests, codeProviderRateLimited
	case KindProviderTransient:
		httpSC, internalSC = http.StatusServiceUnavailable, codeProviderTransient
	case KindProviderFatal:
		httpSC, internalSC = http.StatusBadGateway, codeProviderFatal
	case KindCacheCorruption:
		httpSC, internalSC = http.StatusInternalServerError, codeCacheCorruption
	default:
		httpSC, internalSC = http.StatusInternalServerError, pkgerrors.ECUnknown
	}

	e := pkgerrors.NewWithHTTPStatus(internalSC, httpSC, message)
	if cause != nil {
		e = e.Warp(cause)
	}
	return e
}

// kindByCode maps the internal status codes New assigns back to Kind, so
// Of can recover the kind of an error it did not itself construct with
// a kind available by closure.
var kindByCode = map[int]Kind{
	pkgerrors.ECBadRequest:  KindInvalidInput,
	codeProviderRateLimited: KindProviderRateLimited,
	codeProviderTransient:   KindProviderTransient,
	codeProviderFatal:       KindProviderFatal,
	codeCacheCorruption:     KindCacheCorruption,
}

// Of recovers the Kind of an error produced by New. Errors not produced
// by this package classify as KindInternal.
func Of(err error) Kind {
	var e *pkgerrors.Error
	if errors.As(err, &e) {
		if k, ok := kindByCode[e.InternalStatusCode]; ok {
			return k
		}
	}
	return KindInternal
}

// IsRetryable reports whether a call that failed with err should be
// retried by the caller (after backoff for rate limits).
func IsRetryable(err error) bool {
	switch Of(err) {
	case KindProviderTransient, KindProviderRateLimited:
		return true
	default:
		return false
	}
}

// RetryAfterError is implemented by provider errors that carry a
// server-suggested backoff ("retry in Ns" / "retryDelay: Ns"). The
// Extractor's backoff calculation honors this hint when present.
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

// rateLimitErr wraps a *pkgerrors.Error with a server-suggested delay.
type rateLimitErr struct {
	err        *pkgerrors.Error
	retryAfter time.Duration
}

func (e *rateLimitErr) Error() string { return e.err.Error() }

func (e *rateLimitErr) RetryAfter() time.Duration { return e.retryAfter }

func (e *rateLimitErr) Unwrap() error { return e.err }

// NewRateLimited builds a KindProviderRateLimited error carrying the
// provider's suggested retry delay. Pass 0 when the provider gave no
// hint.
func NewRateLimited(message string, cause error, retryAfter time.Duration) RetryAfterError {
	return &rateLimitErr{err: New(KindProviderRateLimited, message, cause), retryAfter: retryAfter}
}

// RetryAfter extracts the retry-after hint from err, if any, via
// errors.As against RetryAfterError. ok is false when err carries no
// hint (including when err is nil or not a claimerr error at all).
func RetryAfter(err error) (time.Duration, bool) {
	var rae RetryAfterError
	if errors.As(err, &rae) {
		return rae.RetryAfter(), true
	}
	return 0, false
}
