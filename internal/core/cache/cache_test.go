package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlink/internal/domain"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, c.Ping(ctx))

	var calls atomic.Int32
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("v1"), nil
	}

	b, err := c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))
	b, err = c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))
	assert.EqualValues(t, 1, calls.Load())

	mr.FastForward(2 * time.Minute)
	_, err = c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())

	require.NoError(t, c.Forget(ctx, "k"))
	assert.False(t, mr.Exists("k"))
	require.NoError(t, c.Forget(ctx))
}

func TestGetOrLoad_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, mr := newTestCache(t)

	boom := errors.New("db down")
	_, err := c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_CoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _ := newTestCache(t)

	release := make(chan struct{})
	var calls atomic.Int32
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("v"), nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrLoad(ctx, "hot", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, "v", string(b))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestEventCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, mr := newTestCache(t)
	ec := NewEventCache(c, 0, nil)

	capacity := 3
	want := &domain.EventView{
		Event:         domain.Event{ID: "e1", Title: "Cached", Capacity: &capacity, Status: domain.EventStatusActive},
		OrganizerName: "Club Pulse",
	}
	loads := 0
	load := func(context.Context) (*domain.EventView, error) {
		loads++
		return want, nil
	}

	got, err := ec.GetEvent(ctx, "e1", load)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Title)
	assert.Equal(t, "Club Pulse", got.OrganizerName)
	require.NotNil(t, got.Capacity)
	assert.Equal(t, 3, *got.Capacity)
	assert.True(t, mr.Exists("eventlink:event:e1"))
	assert.Equal(t, time.Minute, mr.TTL("eventlink:event:e1"))

	_, err = ec.GetEvent(ctx, "e1", load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)

	ec.ForgetEvent(ctx, "e1")
	assert.False(t, mr.Exists("eventlink:event:e1"))
}

func TestTyped_CorruptEntryIsDropped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, mr := newTestCache(t)
	typed := NewTyped[domain.Event](c, "t:", time.Minute)

	require.NoError(t, mr.Set("t:e1", "{not json"))
	_, err := typed.Get(ctx, "e1", func(context.Context) (*domain.Event, error) {
		t.Fatal("load must not run on a cache hit")
		return nil, nil
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("t:e1"))

	got, err := typed.Get(ctx, "e1", func(context.Context) (*domain.Event, error) {
		return &domain.Event{ID: "e1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
}

func TestTyped_NilIsCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, mr := newTestCache(t)
	typed := NewTyped[domain.Event](c, "t:", time.Minute)

	got, err := typed.Get(ctx, "gone", func(context.Context) (*domain.Event, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, got)
	v, err := mr.Get("t:gone")
	require.NoError(t, err)
	assert.Equal(t, "null", v)
}

func TestGetOrLoad_RedisDownFallsBackToLoader(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	b, err := c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(b))
}
