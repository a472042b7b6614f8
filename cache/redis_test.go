package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), "redis://"+mr.Addr(), "showcase")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSetGetDel(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
	assert.True(t, mr.Exists("showcase:k"))

	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(val))

	require.NoError(t, c.Del(ctx, "k"))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestSetExpires(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestConnectInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "::not a url", "")
	assert.Error(t, err)
}
