package fscache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/judgecache/fscache"
)

func TestSetThenGet(t *testing.T) {
	c, err := fscache.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "a|b|contradiction", []byte(`{"verdict":"contradiction"}`)))

	data, ok, err := c.Get(ctx, "a|b|contradiction")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"verdict":"contradiction"}`, string(data))
}

func TestSetOverwritesExistingKey(t *testing.T) {
	c, err := fscache.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v1")))
	require.NoError(t, c.Set(ctx, "k", []byte("v2")))

	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", string(data))
}
