package surf

import "errors"

// Cursor is a stateful iterator over the encoded trie. It shares the
// filter's bitmaps read-only and owns its traversal state, so any number of
// cursors can walk the same filter concurrently.
//
// A fresh cursor sits at the root with edge 0 up next. Repeated NextKey
// calls yield the encoded keys in ascending lexicographic order.
type Cursor struct {
	labels      *Bitmap
	hasChild    *Bitmap
	isPrefixKey *Bitmap

	// nodeIndex is the level-order id of the current node, nextEdge the
	// next edge value to try on descent (0-256, 256 meaning exhausted).
	nodeIndex int
	nextEdge  int

	// nodes and edges record the ancestor chain; keyPrefix mirrors the
	// traversed edge labels. All three grow and shrink together.
	nodes     []int
	edges     []int
	keyPrefix []byte
}

// Descend moves the cursor along the given edge. It returns ErrNoSuchEdge
// if the current node has no such edge, and ErrIsLeaf if the edge exists
// but terminates instead of leading to a child node; in both cases the
// cursor stays put, with nextEdge parked on the attempted edge.
func (c *Cursor) Descend(edge byte) error {
	c.nextEdge = int(edge)

	offset := 256*c.nodeIndex + int(edge)

	hasLabel, err := c.labels.Peek(offset)
	if err != nil {
		return err
	}
	if hasLabel == 0 {
		return ErrNoSuchEdge
	}

	hasChild, err := c.hasChild.Peek(offset)
	if err != nil {
		return err
	}
	if hasChild == 0 {
		return ErrIsLeaf
	}

	// The child's id is the 1-based count of has-child bits up to and
	// including this edge.
	nextNode, err := c.hasChild.Rank(1, offset)
	if err != nil {
		return err
	}

	c.nodes = append(c.nodes, c.nodeIndex)
	c.edges = append(c.edges, int(edge))
	c.keyPrefix = append(c.keyPrefix, edge)

	c.nodeIndex = nextNode
	c.nextEdge = 0

	return nil
}

// ascend moves the cursor back to its parent, resuming iteration just past
// the edge it came down through. At the root it parks nextEdge at 256,
// signalling exhaustion.
func (c *Cursor) ascend() {
	if len(c.nodes) == 0 {
		c.nodeIndex = 0
		c.nextEdge = 256
		return
	}

	last := len(c.nodes) - 1
	c.nodeIndex = c.nodes[last]
	c.nextEdge = c.edges[last] + 1

	c.nodes = c.nodes[:last]
	c.edges = c.edges[:last]
	c.keyPrefix = c.keyPrefix[:len(c.keyPrefix)-1]
}

// NextKey returns the lexicographically smallest encoded key greater than
// the last one yielded, or the smallest key overall on a fresh cursor. It
// returns ErrEndOfTrie once the trie is exhausted.
func (c *Cursor) NextKey() (Key, error) {
	for {
		for c.nextEdge < 256 {
			err := c.Descend(byte(c.nextEdge))

			switch {
			case err == nil:
				prefixKey, peekErr := c.isPrefixKey.Peek(c.nodeIndex)
				if peekErr != nil {
					return nil, peekErr
				}
				// A prefix-key node is itself a key. The cursor stays on
				// it, so the next call resumes below it.
				if prefixKey == 1 {
					return c.currentKey(), nil
				}

			case errors.Is(err, ErrNoSuchEdge):
				c.nextEdge++

			case errors.Is(err, ErrIsLeaf):
				// Terminal edge: the key is the prefix plus the edge byte.
				// The cursor never enters the leaf.
				key := append(c.currentKey(), byte(c.nextEdge))
				c.nextEdge++
				return key, nil

			default:
				return nil, err
			}
		}

		if len(c.nodes) == 0 {
			return nil, ErrEndOfTrie
		}
		c.ascend()
	}
}

// PointLookup descends along the key byte by byte. It reports whether the
// key is (probabilistically) present, along with the matched prefix: the
// key itself for a prefix-key match, or the traversed portion when a
// terminal edge cut the descent short.
func (c *Cursor) PointLookup(key Key) (bool, Key, error) {
	for i := 0; i < len(key); i++ {
		err := c.Descend(key[i])

		switch {
		case err == nil:

		case errors.Is(err, ErrNoSuchEdge):
			return false, nil, nil

		case errors.Is(err, ErrIsLeaf):
			// A terminal edge matched key[i]; the filter cannot tell the
			// suffix apart, so this counts as a hit.
			return true, append(Key(nil), key[:i+1]...), nil

		default:
			return false, nil, err
		}
	}

	prefixKey, err := c.isPrefixKey.Peek(c.nodeIndex)
	if err != nil {
		return false, nil, err
	}
	if prefixKey == 1 {
		return true, append(Key(nil), key...), nil
	}

	return false, nil, nil
}

// LookupOrSuccessor returns the matched prefix if the key is present, or
// the smallest encoded key greater than it otherwise. ErrEndOfTrie means
// the key exceeds everything stored.
func (c *Cursor) LookupOrSuccessor(key Key) (Key, error) {
	found, matched, err := c.PointLookup(key)
	if err != nil {
		return nil, err
	}

	if found {
		// Step past the match so a follow-up NextKey continues behind it.
		c.nextEdge++
		return matched, nil
	}

	return c.NextKey()
}

// currentKey copies the accumulated key prefix.
func (c *Cursor) currentKey() Key {
	return append(Key(nil), c.keyPrefix...)
}
