package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/db/kvdb"
)

func TestSetGetExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Client{Conf: &kvdb.Conf{Type: "memory"}, Now: func() time.Time { return now }}
	require.NoError(t, c.Init())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "p", "forever", 0))
	updated, err := c.Expire(ctx, "p", time.Second)
	require.NoError(t, err)
	assert.True(t, updated)
	updated, err = c.Expire(ctx, "nope", time.Second)
	require.NoError(t, err)
	assert.False(t, updated)

	n, err := c.Delete(ctx, "p", "nope")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
