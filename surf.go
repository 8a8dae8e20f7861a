// Package surf implements a succinct range filter: a compact probabilistic
// index over a set of byte-string keys answering point-membership,
// successor and range queries without storing the keys in full.
//
// Keys are truncated to their minimal distinguishing prefixes and encoded
// as a LOUDS-DENSE trie, three parallel bitmaps navigated with rank.
// Queries may return false positives but never false negatives for
// keys that were inserted. The filter is immutable once built.
package surf

import (
	"bytes"
	"errors"
)

// Filter is an immutable succinct range filter. Build one with Build or
// Load; it is safe for concurrent queries afterwards.
type Filter struct {
	labels      *Bitmap
	hasChild    *Bitmap
	isPrefixKey *Bitmap

	numKeys  int
	numNodes int
}

// Build constructs a filter over the given keys. The input may be unsorted
// and contain duplicates or empty keys; it is normalized internally and
// left untouched. Build fails with ErrOutOfBounds if the encoding exceeds
// the configured memory limit.
func Build(keys []Key, opts Options) (*Filter, error) {
	normalized := normalizeKeys(keys)
	truncated := truncate(normalized)

	builder := newDenseBuilder(opts.MemoryLimit * 8)
	if err := builder.build(truncated); err != nil {
		return nil, err
	}

	return &Filter{
		labels:      builder.labels,
		hasChild:    builder.hasChild,
		isPrefixKey: builder.isPrefixKey,
		numKeys:     len(truncated),
		numNodes:    builder.currentNodeID,
	}, nil
}

// Size returns the number of keys encoded in the filter.
func (f *Filter) Size() int {
	return f.numKeys
}

// NumNodes returns the number of trie nodes in the encoding.
func (f *Filter) NumNodes() int {
	return f.numNodes
}

// Cursor returns a fresh cursor positioned at the root. Cursors share the
// filter's bitmaps read-only; each owns its traversal state.
func (f *Filter) Cursor() *Cursor {
	return &Cursor{
		labels:      f.labels,
		hasChild:    f.hasChild,
		isPrefixKey: f.isPrefixKey,
	}
}

// Lookup reports whether the key may be in the filter. A false result is
// definitive; a true result may be a false positive.
func (f *Filter) Lookup(key Key) (bool, error) {
	found, _, err := f.Cursor().PointLookup(key)
	return found, err
}

// Successor returns the matched prefix if the key is present (the stored,
// possibly truncated, key), or the smallest encoded key greater than it. It returns ErrEndOfTrie if the key exceeds everything
// stored.
func (f *Filter) Successor(key Key) (Key, error) {
	return f.Cursor().LookupOrSuccessor(key)
}

// RangeIntersects reports whether any encoded key falls in [lo, hi].
func (f *Filter) RangeIntersects(lo, hi Key) (bool, error) {
	match, err := f.Cursor().LookupOrSuccessor(lo)
	if errors.Is(err, ErrEndOfTrie) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return bytes.Compare(match, hi) <= 0, nil
}

// RangeCount returns the number of encoded keys in [lo, hi].
func (f *Filter) RangeCount(lo, hi Key) (int, error) {
	cursor := f.Cursor()

	key, err := cursor.LookupOrSuccessor(lo)
	if errors.Is(err, ErrEndOfTrie) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for bytes.Compare(key, hi) <= 0 {
		count++

		key, err = cursor.NextKey()
		if errors.Is(err, ErrEndOfTrie) {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	return count, nil
}
