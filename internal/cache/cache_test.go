package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Summary {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New("redis://" + mr.Addr())
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not-a-url")
	require.Error(t, err)
}

func TestGetMissThenHit(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, epoch, ok := c.Get(ctx, "u1", "daily")
	require.False(t, ok)

	c.Set(ctx, "u1", "daily", epoch, []byte(`[{"totalTime":10}]`))

	body, _, ok := c.Get(ctx, "u1", "daily")
	require.True(t, ok)
	require.Equal(t, `[{"totalTime":10}]`, string(body))
}

func TestKeysAreScopedByFilterAndGranularity(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, epoch, _ := c.Get(ctx, "u1", "daily")
	c.Set(ctx, "u1", "daily", epoch, []byte(`["u1-daily"]`))

	_, _, ok := c.Get(ctx, "u2", "daily")
	require.False(t, ok)
	_, _, ok = c.Get(ctx, "u1", "none")
	require.False(t, ok)
	_, _, ok = c.Get(ctx, "", "daily")
	require.False(t, ok)
}

func TestBumpInvalidatesEverything(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, epoch, _ := c.Get(ctx, "u1", "daily")
	c.Set(ctx, "u1", "daily", epoch, []byte(`["stale"]`))
	c.Set(ctx, "", "daily", epoch, []byte(`["stale"]`))

	c.Bump(ctx)

	_, epoch, ok := c.Get(ctx, "u1", "daily")
	require.False(t, ok)
	_, _, ok = c.Get(ctx, "", "daily")
	require.False(t, ok)

	// The new epoch caches independently.
	c.Set(ctx, "u1", "daily", epoch, []byte(`["fresh"]`))
	body, _, ok := c.Get(ctx, "u1", "daily")
	require.True(t, ok)
	require.Equal(t, `["fresh"]`, string(body))
}

func TestWriteBetweenMissAndSetOrphansStaleBody(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	// A handler misses and starts computing against the current epoch.
	_, epoch, ok := c.Get(ctx, "u1", "daily")
	require.False(t, ok)

	// An ingest lands before the handler finishes.
	c.Bump(ctx)

	// The handler's Set carries the epoch its Get observed, so the
	// pre-write body is stored under the old epoch and never served.
	c.Set(ctx, "u1", "daily", epoch, []byte(`["pre-write"]`))

	_, epoch, ok = c.Get(ctx, "u1", "daily")
	require.False(t, ok)

	// A recompute after the write caches normally.
	c.Set(ctx, "u1", "daily", epoch, []byte(`["post-write"]`))
	body, _, ok := c.Get(ctx, "u1", "daily")
	require.True(t, ok)
	require.Equal(t, `["post-write"]`, string(body))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Summary
	ctx := context.Background()

	_, _, ok := c.Get(ctx, "u1", "daily")
	require.False(t, ok)

	// No panics on the nil receiver.
	c.Set(ctx, "u1", "daily", 0, []byte("x"))
	c.Bump(ctx)
}
