package claimerr_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/claimerr"
)

func TestOfRecoversKind(t *testing.T) {
	err := claimerr.New(claimerr.KindProviderFatal, "quota exhausted for the day", nil)
	require.Equal(t, claimerr.KindProviderFatal, claimerr.Of(err))
}

func TestOfUnknownErrorIsInternal(t *testing.T) {
	require.Equal(t, claimerr.KindInternal, claimerr.Of(errors.New("boom")))
}

func TestIsRetryable(t *testing.T) {
	require.True(t, claimerr.IsRetryable(claimerr.New(claimerr.KindProviderTransient, "timeout", nil)))
	require.True(t, claimerr.IsRetryable(claimerr.New(claimerr.KindProviderRateLimited, "429", nil)))
	require.False(t, claimerr.IsRetryable(claimerr.New(claimerr.KindProviderFatal, "auth failed", nil)))
	require.False(t, claimerr.IsRetryable(claimerr.New(claimerr.KindInvalidInput, "bad claim", nil)))
}

func TestRetryAfterHint(t *testing.T) {
	err := claimerr.NewRateLimited("rate limited", nil, 45*time.Second)
	d, ok := claimerr.RetryAfter(err)
	require.True(t, ok)
	require.Equal(t, 45*time.Second, d)

	_, ok = claimerr.RetryAfter(errors.New("plain"))
	require.False(t, ok)
}

func TestRateLimitedErrorClassifiesAsRateLimited(t *testing.T) {
	err := claimerr.NewRateLimited("rate limited", nil, time.Second)
	require.Equal(t, claimerr.KindProviderRateLimited, claimerr.Of(err))
}
