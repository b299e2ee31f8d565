package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/twstrategy/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(ttl time.Duration) (*TTLCache[int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	return New[int]("test", ttl, logger.Nop(), WithClock(clock.Now)), clock
}

func TestTTLCache_GetSetExpiry(t *testing.T) {
	c, clock := newTestCache(30 * time.Minute)

	_, ok := c.Get("flows")
	assert.False(t, ok)

	c.Set("flows", 7)
	v, ok := c.Get("flows")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	clock.Advance(29 * time.Minute)
	_, ok = c.Get("flows")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get("flows")
	assert.False(t, ok, "entry expires at the TTL")

	fetchedAt, ok := c.FetchedAt("flows")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), fetchedAt)
}

func TestTTLCache_GetOrLoad(t *testing.T) {
	c, clock := newTestCache(time.Hour)
	calls := 0
	loader := func(ctx context.Context) (int, error) {
		calls++
		return calls * 10, nil
	}

	v, err := c.GetOrLoad(context.Background(), "directory", loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = c.GetOrLoad(context.Background(), "directory", loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Hour)
	v, err = c.GetOrLoad(context.Background(), "directory", loader)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
	assert.Equal(t, 2, calls)
}

func TestTTLCache_GetOrLoadError(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	boom := errors.New("feed down")

	_, err := c.GetOrLoad(context.Background(), "flows", func(ctx context.Context) (int, error) {
		return 0, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failed loads are not cached")
}

func TestTTLCache_ConcurrentLoadsShareOneCall(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	var calls int32
	release := make(chan struct{})

	loader := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "flows", loader)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Let the goroutines pile up on the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestTTLCache_InvalidateAndClean(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	clock.Advance(2 * time.Minute)
	c.Set("c", 3)

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 1, stats.StaleCount)
	assert.Equal(t, 1, stats.FreshCount)

	assert.Equal(t, 1, c.CleanStale())
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
