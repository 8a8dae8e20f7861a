package surf

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testOptions keeps the pre-reserved bitmap backing small enough for tests.
func testOptions() Options {
	opts := DefaultOptions()
	opts.MemoryLimit = 1 << 20
	return opts
}

func buildFilter(t *testing.T, keys []Key) *Filter {
	t.Helper()

	filter, err := Build(keys, testOptions())
	require.NoError(t, err)

	return filter
}

func TestDescend(t *testing.T) {
	filter := buildFilter(t, keysOf("ai", "ao", "f", "fa", "fe"))
	cursor := filter.Cursor()

	assert.ErrorIs(t, cursor.Descend('z'), ErrNoSuchEdge)
	assert.Equal(t, 0, cursor.nodeIndex)

	require.NoError(t, cursor.Descend('a'))
	assert.Equal(t, 1, cursor.nodeIndex)
	assert.Equal(t, 0, cursor.nextEdge)
	assert.Equal(t, Key("a"), Key(cursor.keyPrefix))

	assert.ErrorIs(t, cursor.Descend('i'), ErrIsLeaf)
	assert.Equal(t, 1, cursor.nodeIndex)
	assert.Equal(t, int('i'), cursor.nextEdge)
}

func TestAscend(t *testing.T) {
	filter := buildFilter(t, keysOf("ai", "ao", "f", "fa", "fe"))
	cursor := filter.Cursor()

	require.NoError(t, cursor.Descend('f'))
	cursor.ascend()

	assert.Equal(t, 0, cursor.nodeIndex)
	assert.Equal(t, int('f')+1, cursor.nextEdge)
	assert.Empty(t, cursor.keyPrefix)

	// Ascending from the root signals exhaustion.
	cursor.ascend()
	assert.Equal(t, 256, cursor.nextEdge)
}

func collectKeys(t *testing.T, cursor *Cursor) []Key {
	t.Helper()

	var keys []Key
	for {
		key, err := cursor.NextKey()
		if errors.Is(err, ErrEndOfTrie) {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, key)
	}
}

func TestNextKeyEnumeration(t *testing.T) {
	keys := keysOf("f", "far", "fas", "fast", "fat", "s", "top", "toy", "trie", "trip", "try")
	filter := buildFilter(t, keys)

	got := collectKeys(t, filter.Cursor())

	// The key set is already minimal, so enumeration reproduces it exactly,
	// in order.
	assert.Empty(t, cmp.Diff(keys, got))
	assert.Len(t, got, filter.Size())
}

func TestNextKeyTruncated(t *testing.T) {
	filter := buildFilter(t, keysOf("far", "fast", "john"))

	got := collectKeys(t, filter.Cursor())

	assert.Empty(t, cmp.Diff(keysOf("far", "fas", "j"), got))
}

func TestNextKeyEmptyFilter(t *testing.T) {
	filter := buildFilter(t, nil)

	_, err := filter.Cursor().NextKey()
	assert.ErrorIs(t, err, ErrEndOfTrie)
}

func TestNextKeyUnsortedInput(t *testing.T) {
	filter := buildFilter(t, keysOf("fe", "ai", "fa", "ao", "f", "ai"))

	got := collectKeys(t, filter.Cursor())

	assert.Empty(t, cmp.Diff(keysOf("ai", "ao", "f", "fa", "fe"), got))
}

func TestPointLookup(t *testing.T) {
	keys := []Key{
		{0x00, 0x01},
		{0x00, 0x01, 0x02},
		{0x42},
		{0xFF, 0x42, 0x70, 0x71},
	}
	filter := buildFilter(t, keys)

	for _, key := range keys {
		found, _, err := filter.Cursor().PointLookup(key)
		require.NoError(t, err)
		assert.True(t, found, "key %x", key)
	}

	for _, key := range []Key{{0x00, 0x02}, {0x43}} {
		found, _, err := filter.Cursor().PointLookup(key)
		require.NoError(t, err)
		assert.False(t, found, "key %x", key)
	}
}

func TestPointLookupMatchedPrefix(t *testing.T) {
	filter := buildFilter(t, []Key{
		{0x00, 0x01},
		{0x00, 0x01, 0x02},
		{0x42},
		{0xFF, 0x42, 0x70, 0x71},
	})

	// Full traversal onto a prefix-key node matches the whole key.
	found, matched, err := filter.Cursor().PointLookup(Key{0x00, 0x01})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Key{0x00, 0x01}, matched)

	// 0xFF... was truncated to its first byte; a terminal edge cuts the
	// descent short and only the traversed portion matches.
	found, matched, err = filter.Cursor().PointLookup(Key{0xFF, 0x42, 0x70, 0x71})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Key{0xFF}, matched)
}

func TestLookupOrSuccessor(t *testing.T) {
	filter := buildFilter(t, keysOf("ai", "ao", "f", "fa", "fe"))

	// Present key: returned as-is.
	key, err := filter.Cursor().LookupOrSuccessor(Key("ao"))
	require.NoError(t, err)
	assert.Equal(t, Key("ao"), key)

	// Absent key: smallest encoded key greater than it. "f" is hit as a
	// prefix-key node before any deeper descent.
	key, err = filter.Cursor().LookupOrSuccessor(Key("b"))
	require.NoError(t, err)
	assert.Equal(t, Key("f"), key)

	// Beyond all keys.
	_, err = filter.Cursor().LookupOrSuccessor(Key("ff"))
	assert.ErrorIs(t, err, ErrEndOfTrie)
}

func TestLookupOrSuccessorResumes(t *testing.T) {
	filter := buildFilter(t, keysOf("ai", "ao", "f", "fa", "fe"))
	cursor := filter.Cursor()

	key, err := cursor.LookupOrSuccessor(Key("ai"))
	require.NoError(t, err)
	assert.Equal(t, Key("ai"), key)

	// The cursor stepped past the match, so iteration continues behind it.
	key, err = cursor.NextKey()
	require.NoError(t, err)
	assert.Equal(t, Key("ao"), key)

	key, err = cursor.NextKey()
	require.NoError(t, err)
	assert.Equal(t, Key("f"), key)
}
