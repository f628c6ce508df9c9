package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/logger"
)

func TestMemoryCache_GetSetDelete(t *testing.T) {
	ctx := t.Context()
	c := NewMemoryCache(0)

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []byte("one")))
	require.NoError(t, c.Set(ctx, "b", []byte("two")))

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", string(got))

	require.NoError(t, c.Delete(ctx, "a", "missing"))
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	now = now.Add(59 * time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok, "entry should live until its ttl")

	now = now.Add(time.Second)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok, "entry should expire at its ttl")
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := t.Context()
	c := NewMemoryCache(0)

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
	got[1] = 'y'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(t.Context(), DefaultConfig(), logger.Nop())
	require.NoError(t, err)
	defer c.Close()

	_, isMemory := c.(*MemoryCache)
	assert.True(t, isMemory)
}

func TestNew_UnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	cfg := DefaultConfig()
	cfg.RedisAddr = "127.0.0.1:1"
	_, err := New(ctx, cfg, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestLessonKey(t *testing.T) {
	assert.Equal(t, "lesson:abc", LessonKey("abc"))
}

func TestRedisCache(t *testing.T) {
	ctx := t.Context()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.RedisAddr = mr.Addr()
	cfg.TTL = time.Hour
	c, err := New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.IsType(t, &RedisCache{}, c)

	_, ok, err := c.Get(ctx, "lesson:1")
	require.NoError(t, err, "a missing key is a miss, not an error")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "lesson:1", []byte(`{"title":"Syntax"}`)))
	require.NoError(t, c.Set(ctx, "lesson:2", []byte("two")))

	stored, err := mr.Get("pathwise:lesson:1")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Syntax"}`, stored)
	assert.Equal(t, time.Hour, mr.TTL("pathwise:lesson:1"))

	got, ok, err := c.Get(ctx, "lesson:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"title":"Syntax"}`, string(got))

	require.NoError(t, c.Delete(ctx))
	require.NoError(t, c.Delete(ctx, "lesson:1", "lesson:missing"))
	assert.False(t, mr.Exists("pathwise:lesson:1"))
	assert.True(t, mr.Exists("pathwise:lesson:2"))

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, "lesson:2")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire with the configured ttl")
}

func TestRedisCache_ServerGone(t *testing.T) {
	ctx := t.Context()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.RedisAddr = mr.Addr()
	c, err := New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	mr.Close()
	_, _, err = c.Get(ctx, "lesson:1")
	assert.ErrorContains(t, err, "redis get lesson:1")
	assert.ErrorContains(t, c.Set(ctx, "lesson:1", []byte("x")), "redis set lesson:1")
}
