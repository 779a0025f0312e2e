package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClockedStore(t *testing.T) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.Now))
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestMemoryStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first delivery wins", func(t *testing.T) {
		store, _ := newClockedStore(t)
		isNew, err := store.MarkProcessed(ctx, "webhook:sig_1a2b3c4d", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "webhook:sig_1a2b3c4d", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "repeated delivery")
	})

	t.Run("expired keys can be marked again", func(t *testing.T) {
		store, clock := newClockedStore(t)
		_, err := store.MarkProcessed(ctx, "k", time.Minute)
		require.NoError(t, err)

		clock.Advance(time.Minute)
		isNew, err := store.MarkProcessed(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("non-positive ttl uses the default", func(t *testing.T) {
		store, clock := newClockedStore(t)
		_, err := store.MarkProcessed(ctx, "k", 0)
		require.NoError(t, err)

		clock.Advance(23 * time.Hour)
		processed, err := store.IsProcessed(ctx, "k")
		require.NoError(t, err)
		assert.True(t, processed)
	})
}

func TestMemoryStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	processed, err := store.IsProcessed(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	processed, err = store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.True(t, processed)

	clock.Advance(2 * time.Minute)
	processed, err = store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	_, _ = store.MarkProcessed(ctx, "short-1", time.Second)
	_, _ = store.MarkProcessed(ctx, "short-2", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Len())

	clock.Advance(time.Minute)
	store.sweep()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ConcurrentMark(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	const contenders = 100
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "webhook:sig_race", time.Hour)
			if err == nil && isNew {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemoryStore_Close(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
