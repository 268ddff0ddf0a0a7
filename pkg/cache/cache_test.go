package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweepgo/pkg/cache"
	"sweepgo/pkg/core"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	params := core.Params{"lr": 0.01, "layers": 3}
	curve := []core.Measurement{{Step: 1, Value: 0.8}, {Step: 2, Value: 0.4}}

	_, ok := c.Get("space", params)
	require.False(t, ok)

	require.NoError(t, c.Set("space", params, curve))

	got, ok := c.Get("space", params)
	require.True(t, ok)
	require.Equal(t, curve, got)

	// Different space name, different key.
	_, ok = c.Get("other", params)
	require.False(t, ok)
}

func TestCacheTTLEviction(t *testing.T) {
	c, err := cache.New(t.TempDir(), time.Nanosecond)
	require.NoError(t, err)

	params := core.Params{"x": 1}
	require.NoError(t, c.Set("space", params, []core.Measurement{{Step: 1, Value: 1}}))

	time.Sleep(time.Millisecond)
	_, ok := c.Get("space", params)
	require.False(t, ok)
}

func TestCacheKeyIgnoresMapOrder(t *testing.T) {
	c, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	curve := []core.Measurement{{Step: 1, Value: 2}}
	require.NoError(t, c.Set("s", core.Params{"a": 1, "b": 2}, curve))

	got, ok := c.Get("s", core.Params{"b": 2, "a": 1})
	require.True(t, ok)
	require.Equal(t, curve, got)
}
