package surf

import "fmt"

// nodeTask carries everything needed to build one future node: the keys
// whose path passes through it, and whether some key terminates exactly on
// it. There is a 1:1 correspondence between tasks and potential nodes, but
// a task whose key list stays empty never materializes a node.
type nodeTask struct {
	keys        []Key
	isPrefixKey bool
}

// denseBuilder encodes a trie over a truncated key set into the three
// LOUDS-DENSE bitmaps.
//
// Nodes are numbered in level order. Node n owns bits [256n, 256n+256) of
// labels (one per outbound edge value) and hasChild (set iff the edge leads
// to a child node rather than a terminal), and bit n of isPrefixKey (set
// iff a key ends exactly at the node). For a set hasChild bit at offset o,
// the child's node id is Rank(1, o) over hasChild; that equality is the
// sole navigation primitive and everything below exists to preserve it.
type denseBuilder struct {
	labels      *Bitmap
	hasChild    *Bitmap
	isPrefixKey *Bitmap

	// tasks is the FIFO of pending nodes. currentTask points at the most
	// recently appended element: the task being defined, not the one being
	// worked on.
	tasks       []*nodeTask
	currentTask *nodeTask

	// currentNodeID is the 0-indexed level-order id of the node under
	// construction. Empty tasks are skipped before it advances, so dead
	// branches burn no id.
	currentNodeID int
}

// newDenseBuilder sizes the three bitmaps against a memory limit given in
// bits. A node costs 256 bits in labels, 256 in hasChild and one in
// isPrefixKey, so the limit divided by 513 is the node budget.
func newDenseBuilder(memoryLimit int) *denseBuilder {
	memoryUnit := memoryLimit / (256 + 256 + 1)

	return &denseBuilder{
		labels:      NewBitmap(256, 256*memoryUnit),
		hasChild:    NewBitmap(256, 256*memoryUnit),
		isPrefixKey: NewBitmap(1, memoryUnit),
	}
}

// build encodes the given keys, which must be sorted, distinct and
// truncated. It may only be called once per builder.
func (b *denseBuilder) build(keys []Key) error {
	// Depth 0 considers every key.
	b.appendTask()
	b.currentTask.keys = keys

	for depth := 0; depth < maxKeyLength(keys); depth++ {
		// Tasks appended during this pass belong to the next level; only
		// the first n are part of the current one.
		n := len(b.tasks)
		for i := 0; i < n; i++ {
			task := b.tasks[i]

			// An empty task is left over from a single key that already
			// ended. No node comes out of it.
			if len(task.keys) == 0 {
				continue
			}

			if err := b.initializeNode(); err != nil {
				return err
			}

			if task.isPrefixKey {
				if err := b.isPrefixKey.Set(b.isPrefixKeyOffset()); err != nil {
					return fmt.Errorf("dense builder: is-prefix-key bit for node %d: %w", b.currentNodeID, err)
				}
			}

			// Keys are sorted, so equal bytes at this depth cluster
			// together and coalesce into a single edge.
			nodeHasEdges := false
			var mostRecentEdge byte

			for _, key := range task.keys {
				edge := key[depth]

				if !nodeHasEdges || mostRecentEdge != edge {
					if err := b.labels.Set(b.labelOffset() + int(edge)); err != nil {
						return fmt.Errorf("dense builder: label bit for edge %#x: %w", edge, err)
					}

					// A new edge means a new potential node on the next
					// level, which the remaining keys of this edge fill in.
					b.appendTask()

					mostRecentEdge = edge
					nodeHasEdges = true
				}

				if depth == len(key)-1 {
					// The key ends on the node behind this edge. The edge
					// stays terminal; the child task only records the flag.
					b.currentTask.isPrefixKey = true
				} else {
					if err := b.hasChild.Set(b.hasChildOffset() + int(edge)); err != nil {
						return fmt.Errorf("dense builder: has-child bit for edge %#x: %w", edge, err)
					}
					b.currentTask.keys = append(b.currentTask.keys, key)
				}
			}

			b.currentNodeID++
		}

		// The current level is done.
		b.tasks = b.tasks[n:]
	}

	return nil
}

// initializeNode grows the bitmaps to the full extents of the current node,
// so every materialized node occupies its whole 256-bit block even when
// only low edges are set.
func (b *denseBuilder) initializeNode() error {
	if _, err := b.labels.Get(b.labelOffset() + 255); err != nil {
		return fmt.Errorf("dense builder: labels extent for node %d: %w", b.currentNodeID, err)
	}
	if _, err := b.hasChild.Get(b.hasChildOffset() + 255); err != nil {
		return fmt.Errorf("dense builder: has-child extent for node %d: %w", b.currentNodeID, err)
	}
	if _, err := b.isPrefixKey.Get(b.isPrefixKeyOffset()); err != nil {
		return fmt.Errorf("dense builder: is-prefix-key extent for node %d: %w", b.currentNodeID, err)
	}
	return nil
}

func (b *denseBuilder) labelOffset() int {
	return b.currentNodeID * 256
}

func (b *denseBuilder) hasChildOffset() int {
	return b.currentNodeID * 256
}

func (b *denseBuilder) isPrefixKeyOffset() int {
	return b.currentNodeID
}

func (b *denseBuilder) appendTask() {
	task := &nodeTask{}
	b.tasks = append(b.tasks, task)
	b.currentTask = task
}
