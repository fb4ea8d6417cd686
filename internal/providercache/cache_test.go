package providercache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyAddrReturnsMemoryCache(t *testing.T) {
	c := New("", "", 0)
	stats := c.Stats()
	assert.Equal(t, "memory", stats.Backend)
}

func TestNew_UnreachableRedisFallsBackToMemory(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	assert.Equal(t, "memory", c.Stats().Backend, "an unreachable redis address must degrade to in-memory, never error")
}

func TestMemCache_SetThenGet(t *testing.T) {
	c := New("", "", 0)
	ctx := context.Background()
	val := json.RawMessage(`{"ok":true}`)

	c.Set(ctx, "k1", val, time.Minute)
	got, hit := c.Get(ctx, "k1")
	require.True(t, hit)
	assert.JSONEq(t, string(val), string(got))
}

func TestMemCache_ExpiredEntryMisses(t *testing.T) {
	c := New("", "", 0)
	ctx := context.Background()
	c.Set(ctx, "k2", json.RawMessage(`1`), -time.Second)

	_, hit := c.Get(ctx, "k2")
	assert.False(t, hit, "an already-expired entry must never be returned")
}

func TestMemCache_MissingKeyMisses(t *testing.T) {
	c := New("", "", 0)
	_, hit := c.Get(context.Background(), "does-not-exist")
	assert.False(t, hit)
}

func TestMemCache_StatsCountsKeys(t *testing.T) {
	c := New("", "", 0)
	ctx := context.Background()
	c.Set(ctx, "a", json.RawMessage(`1`), time.Minute)
	c.Set(ctx, "b", json.RawMessage(`2`), time.Minute)
	assert.Equal(t, 2, c.Stats().InMemoryKeys)
}

func TestKey_JoinsAndLowercases(t *testing.T) {
	assert.Equal(t, "odds|ncaam|game-1", Key("ODDS", "NCAAM", "game-1"))
}

func TestKey_SingleComponent(t *testing.T) {
	assert.Equal(t, "scoreboard", Key("Scoreboard"))
}
