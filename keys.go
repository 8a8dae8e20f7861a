package surf

import (
	"bytes"
	"sort"
)

// Key is a byte-string key stored in the filter.
//
// Keys compare lexicographically: pairs of corresponding bytes are compared
// at the same index, and if all pairs are equal the shorter key is the
// lesser one.
type Key []byte

// normalizeKeys prepares raw input for the builder: it drops empty keys,
// sorts the rest lexicographically and removes duplicates. The input slice
// is left untouched.
func normalizeKeys(keys []Key) []Key {
	normalized := make([]Key, 0, len(keys))
	for _, key := range keys {
		if len(key) == 0 {
			continue
		}
		normalized = append(normalized, key)
	}

	sort.Slice(normalized, func(i, j int) bool {
		return bytes.Compare(normalized[i], normalized[j]) < 0
	})

	deduped := normalized[:0]
	for i, key := range normalized {
		if i > 0 && bytes.Equal(key, normalized[i-1]) {
			continue
		}
		deduped = append(deduped, key)
	}

	return deduped
}

// truncate shortens each key to its minimal distinguishing prefix: the
// shortest prefix which still tells it apart from both its neighbours in
// the sorted input.
//
// The input must be sorted and free of duplicates. As an example, the keys
// far, fast, john truncate to far, fas, j.
func truncate(keys []Key) []Key {
	out := make([]Key, len(keys))

	for i, key := range keys {
		// Find the lowest-indexed byte where the key differs from its
		// predecessor, and likewise for its successor. The larger of the
		// two bounds the prefix that distinguishes the key from both.
		firstDifferenceBefore := 0
		firstDifferenceAfter := 0

		if i > 0 {
			differ, fdb := firstDifferenceAt(key, keys[i-1])
			if differ {
				firstDifferenceBefore = fdb
			} else {
				firstDifferenceBefore = len(key)
			}
		}

		if i < len(keys)-1 {
			differ, fda := firstDifferenceAt(key, keys[i+1])
			if differ {
				firstDifferenceAfter = fda
			} else {
				firstDifferenceAfter = len(key)
			}
		}

		n := firstDifferenceBefore
		if firstDifferenceAfter > n {
			n = firstDifferenceAfter
		}

		// The differing index itself must be part of the prefix, unless the
		// key ends before it, which happens when the key is a strict prefix
		// of a neighbour.
		if n < len(key) {
			n++
		}

		out[i] = append(Key(nil), key[:n]...)
	}

	return out
}

// firstDifferenceAt finds the first index at which two keys differ. If one
// is a strict prefix of the other, the differing index is the length of the
// shorter key. The first return value is false iff the keys are equal.
func firstDifferenceAt(a, b Key) (bool, int) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return true, i
		}
	}

	if len(a) == len(b) {
		return false, 0
	}
	return true, n
}

// maxKeyLength returns the length in bytes of the longest key.
func maxKeyLength(keys []Key) int {
	max := 0
	for _, key := range keys {
		if len(key) > max {
			max = len(key)
		}
	}
	return max
}
