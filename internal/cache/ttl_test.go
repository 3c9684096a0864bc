package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetch(t *testing.T) {
	t.Run("second call within TTL does not refetch", func(t *testing.T) {
		c := New[int](time.Minute, 8)
		calls := 0
		fetch := func() (int, error) {
			calls++
			return 42, nil
		}

		v, hit, err := c.GetOrFetch("k", fetch)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.False(t, hit)

		v, hit, err = c.GetOrFetch("k", fetch)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.True(t, hit)
		assert.Equal(t, 1, calls)
	})

	t.Run("expired entry is refetched", func(t *testing.T) {
		c := New[int](time.Minute, 8)
		current := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return current }

		calls := 0
		fetch := func() (int, error) {
			calls++
			return calls, nil
		}

		v, _, _ := c.GetOrFetch("k", fetch)
		assert.Equal(t, 1, v)

		current = current.Add(61 * time.Second)
		v, hit, _ := c.GetOrFetch("k", fetch)
		assert.Equal(t, 2, v)
		assert.False(t, hit)
		assert.Equal(t, 2, calls)
	})

	t.Run("fetch errors are not cached", func(t *testing.T) {
		c := New[int](time.Minute, 8)
		calls := 0
		boom := errors.New("remote down")

		_, _, err := c.GetOrFetch("k", func() (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)

		v, hit, err := c.GetOrFetch("k", func() (int, error) {
			calls++
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.False(t, hit)
		assert.Equal(t, 2, calls)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		c := New[int](time.Minute, 2)
		fetchVal := func(n int) func() (int, error) {
			return func() (int, error) { return n, nil }
		}

		c.GetOrFetch("a", fetchVal(1))
		c.GetOrFetch("b", fetchVal(2))
		c.GetOrFetch("a", fetchVal(1)) // refresh a; b is now LRU
		c.GetOrFetch("c", fetchVal(3)) // evicts b

		calls := 0
		c.GetOrFetch("b", func() (int, error) {
			calls++
			return 2, nil
		})
		assert.Equal(t, 1, calls)

		stats := c.Stats()
		assert.Equal(t, 2, stats.Entries)
	})

	t.Run("concurrent misses share one fetch", func(t *testing.T) {
		c := New[int](time.Minute, 8)
		var calls atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})

		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				v, _, err := c.GetOrFetch("k", func() (int, error) {
					calls.Add(1)
					time.Sleep(10 * time.Millisecond)
					return 99, nil
				})
				assert.NoError(t, err)
				assert.Equal(t, 99, v)
			}()
		}
		close(start)
		wg.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("waiters coalesced onto a cold fetch are not hits", func(t *testing.T) {
		c := New[int](time.Minute, 8)
		var hits atomic.Int32
		var wg sync.WaitGroup
		fetching := make(chan struct{})
		release := make(chan struct{})

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, hit, _ := c.GetOrFetch("k", func() (int, error) {
				close(fetching)
				<-release
				return 1, nil
			})
			if hit {
				hits.Add(1)
			}
		}()

		<-fetching
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, hit, _ := c.GetOrFetch("k", func() (int, error) { return 1, nil })
				if hit {
					hits.Add(1)
				}
			}()
		}
		// Give the waiters time to join the in-flight fetch before it
		// completes.
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(0), hits.Load())

		_, hit, _ := c.GetOrFetch("k", func() (int, error) { return 1, nil })
		assert.True(t, hit)
	})

	t.Run("distinct keys fetch independently", func(t *testing.T) {
		c := New[string](time.Minute, 8)
		for i := 0; i < 3; i++ {
			key := fmt.Sprintf("query-%d", i)
			v, _, err := c.GetOrFetch(key, func() (string, error) { return key, nil })
			require.NoError(t, err)
			assert.Equal(t, key, v)
		}
		assert.Equal(t, 3, c.Stats().Entries)
	})
}
