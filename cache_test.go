package surf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedFilterLookup(t *testing.T) {
	filter := buildFilter(t, keysOf("ai", "ao", "f", "fa", "fe"))

	cached, err := NewCachedFilter(filter)
	require.NoError(t, err)

	found, err := cached.Lookup(Key("fa"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, cached.CacheLen())

	// Second lookup is served from the cache.
	found, err = cached.Lookup(Key("fa"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, cached.CacheLen())

	// Negative answers are cached too.
	found, err = cached.Lookup(Key("b"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, cached.CacheLen())
}

func TestCachedFilterMatchesDirect(t *testing.T) {
	filter := buildFilter(t, keysOf("f", "far", "fas", "fast", "fat", "s", "top", "toy"))

	cached, err := NewCachedFilterWithSize(filter, 16)
	require.NoError(t, err)

	for _, key := range []string{"f", "far", "fa", "t", "toy", "zzz", "far", "fa"} {
		want, err := filter.Lookup(Key(key))
		require.NoError(t, err)

		got, err := cached.Lookup(Key(key))
		require.NoError(t, err)

		assert.Equal(t, want, got, "key %q", key)
	}
}

func TestCachedFilterClear(t *testing.T) {
	filter := buildFilter(t, keysOf("ai", "ao"))

	cached, err := NewCachedFilter(filter)
	require.NoError(t, err)

	_, err = cached.Lookup(Key("ai"))
	require.NoError(t, err)
	assert.Equal(t, 1, cached.CacheLen())

	cached.ClearCache()
	assert.Equal(t, 0, cached.CacheLen())
}

func TestCachedFilterConcurrent(t *testing.T) {
	filter := buildFilter(t, keysOf("ai", "ao", "f", "fa", "fe"))

	cached, err := NewCachedFilter(filter)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, key := range []string{"ai", "b", "fa", "zz", "f"} {
				if _, err := cached.Lookup(Key(key)); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Same(t, filter, cached.Filter())
}
