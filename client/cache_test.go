package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLoadsOnceAndCaches(t *testing.T) {
	c := NewCache()
	loads := 0
	load := func(context.Context) (string, error) {
		loads++
		return "v", nil
	}

	for range 3 {
		v, err := Fetch(t.Context(), c, "k", load)
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, loads)

	c.Invalidate("k")
	_, err := Fetch(t.Context(), c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")
	_, err := Fetch(t.Context(), c, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestFetchDropsResultInvalidatedMidFlight(t *testing.T) {
	c := NewCache()
	v, err := Fetch(t.Context(), c, "k", func(context.Context) (string, error) {
		c.Invalidate("k")
		return "stale", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", v)
	_, ok := c.Get("k")
	assert.False(t, ok, "a value loaded before an invalidation must not be stored")
}

func TestFetchDropsResultResetMidFlight(t *testing.T) {
	c := NewCache()
	_, err := Fetch(t.Context(), c, KeyAuthMe, func(context.Context) (User, error) {
		c.Reset()
		return User{ID: "u_1"}, nil
	})
	require.NoError(t, err)
	_, ok := c.Get(KeyAuthMe)
	assert.False(t, ok)
}

func TestFetchTypeMismatch(t *testing.T) {
	c := NewCache()
	c.Set("k", 42)
	_, err := Fetch(t.Context(), c, "k", func(context.Context) (string, error) { return "x", nil })
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	c := NewCache()
	c.Set(KeyAuthMe, User{})
	c.Set(KeyStripeConnectStatus, ConnectStatus{})
	c.Reset()
	_, ok := c.Get(KeyAuthMe)
	assert.False(t, ok)
	_, ok = c.Get(KeyStripeConnectStatus)
	assert.False(t, ok)
}

func TestCheckExternalURL(t *testing.T) {
	for _, ok := range []string{"https://checkout.stripe.com/c/pay/cs_1", "http://localhost:4242/portal"} {
		assert.NoError(t, checkExternalURL(ok), ok)
	}
	for _, bad := range []string{"", "javascript:alert(1)", "/dashboard", "//evil.example", "data:text/html,hi"} {
		assert.Error(t, checkExternalURL(bad), bad)
	}
}
