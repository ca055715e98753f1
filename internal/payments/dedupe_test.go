package payments

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDeduper(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	d := NewRedisDeduper(client, time.Hour)

	first, err := d.FirstSeen(ctx, "stripe:evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, "stripe:evt_1")
	require.NoError(t, err)
	assert.False(t, again)

	assert.True(t, mr.Exists(keyPrefix+"stripe:evt_1"))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"stripe:evt_1"))

	require.NoError(t, d.Forget(ctx, "stripe:evt_1"))
	retried, err := d.FirstSeen(ctx, "stripe:evt_1")
	require.NoError(t, err)
	assert.True(t, retried)
}

func TestRedisDeduperExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	d := NewRedisDeduper(client, time.Minute)

	_, err := d.FirstSeen(ctx, "evt")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	first, err := d.FirstSeen(ctx, "evt")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestRedisDeduperError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.SetError("LOADING")

	_, err := NewRedisDeduper(client, time.Minute).FirstSeen(context.Background(), "evt")
	assert.Error(t, err)
}

func TestMemoryDeduper(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDeduper(50 * time.Millisecond)

	first, _ := d.FirstSeen(ctx, "evt")
	again, _ := d.FirstSeen(ctx, "evt")
	assert.True(t, first)
	assert.False(t, again)

	time.Sleep(80 * time.Millisecond)
	expired, _ := d.FirstSeen(ctx, "evt")
	assert.True(t, expired)

	_ = d.Forget(ctx, "evt")
	forgotten, _ := d.FirstSeen(ctx, "evt")
	assert.True(t, forgotten)
}

func TestMemoryDeduperWithoutTTL(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDeduper(0)

	first, _ := d.FirstSeen(ctx, "evt")
	again, _ := d.FirstSeen(ctx, "evt")
	assert.True(t, first)
	assert.False(t, again)
}
