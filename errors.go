package surf

import "errors"

// Bitmap faults. These indicate a real error and abort the current operation.
var (
	ErrOutOfBounds  = errors.New("bit index out of bounds")
	ErrInvalidValue = errors.New("bit value must be 0 or 1")
	ErrInvalidCount = errors.New("count must be in [1, length]")
	ErrNotFound     = errors.New("not enough bits of requested value")
)

// Traversal signals. These are control flow, not faults: the query layer
// consumes NoSuchEdge and IsLeaf, and EndOfTrie marks cursor exhaustion.
// Match them with errors.Is, never by message.
var (
	ErrNoSuchEdge = errors.New("no such edge")
	ErrIsLeaf     = errors.New("edge leads to a leaf")
	ErrEndOfTrie  = errors.New("reached end of trie")
)
