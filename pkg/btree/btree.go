// Package btree implements the tree engine: search, insert with
// pre-emptive split-on-descent, and in-order traversal over nodes held in
// the node cache and persisted through the block file.
package btree

import (
	"fmt"

	"blocktree/pkg/cache"
	"blocktree/pkg/node"
)

// header is the header-mutation surface the tree engine needs from the
// block file. Header mutations bypass the node codec entirely.
type header interface {
	RootBlockID() uint64
	SetRootBlockID(id uint64) error
	AllocateBlockID() (uint64, error)
}

// Engine implements the B-tree algorithms: search, insert with
// pre-emptive split-on-descent, and in-order traversal. It holds no
// long-lived node state of its own; every node it touches is re-fetched
// from the cache.
type Engine struct {
	header header
	cache  *cache.Cache
}

// New constructs a tree engine over the given header and node cache.
func New(h header, c *cache.Cache) *Engine {
	return &Engine{header: h, cache: c}
}

// Search looks up key and reports whether it is present. A promoted
// median lives in whichever internal node it was split into, not in any
// leaf, so each node is checked for an exact match as the search
// descends rather than only at the final leaf.
func (e *Engine) Search(key uint64) (value uint64, found bool, err error) {
	root := e.header.RootBlockID()
	if root == 0 {
		return 0, false, nil
	}

	n, err := e.cache.ReadNode(root)
	if err != nil {
		return 0, false, err
	}

	for {
		pos := keyPosition(n, key)
		if pos < len(n.Keys) && n.Keys[pos] == key {
			return n.Values[pos], true, nil
		}
		if n.IsLeaf() {
			return 0, false, nil
		}
		n, err = e.cache.ReadNode(n.Children[pos])
		if err != nil {
			return 0, false, err
		}
	}
}

// Insert inserts the (key, value) pair, splitting any full node encountered
// on the way down so the caller never needs to back-propagate a split. If
// key is already present, Insert returns duplicate without mutating any
// block or header field.
func (e *Engine) Insert(key, value uint64, duplicate error) error {
	root := e.header.RootBlockID()

	if root == 0 {
		return e.insertIntoEmptyTree(key, value)
	}

	if _, found, err := e.Search(key); err != nil {
		return err
	} else if found {
		return duplicate
	}

	rootNode, err := e.cache.ReadNode(root)
	if err != nil {
		return err
	}

	if rootNode.IsFull() {
		rootNode, err = e.splitRoot(root, rootNode)
		if err != nil {
			return err
		}
	}

	return e.insertNonFull(rootNode, key, value)
}

func (e *Engine) insertIntoEmptyTree(key, value uint64) error {
	id, err := e.header.AllocateBlockID()
	if err != nil {
		return err
	}

	root := node.New(id, 0)
	root.Keys = []uint64{key}
	root.Values = []uint64{value}

	if err := e.cache.WriteNode(root); err != nil {
		return err
	}
	return e.header.SetRootBlockID(id)
}

// splitRoot handles the root-split case: a fresh block id is allocated for
// the new root, whose sole child is the old root; splitChild then divides
// the old root into (y, z) and promotes the median into the new root.
func (e *Engine) splitRoot(oldRootID uint64, oldRoot *node.Node) (*node.Node, error) {
	newRootID, err := e.header.AllocateBlockID()
	if err != nil {
		return nil, err
	}

	newRoot := node.New(newRootID, 0)
	newRoot.Children = []uint64{oldRootID}
	oldRoot.ParentBlockID = newRootID

	z, err := e.splitChild(newRoot, 0, oldRoot)
	if err != nil {
		return nil, err
	}

	if err := e.cache.WriteNode(newRoot); err != nil {
		return nil, err
	}
	if err := e.cache.WriteNode(oldRoot); err != nil {
		return nil, err
	}
	if err := e.cache.WriteNode(z); err != nil {
		return nil, err
	}
	if err := e.header.SetRootBlockID(newRootID); err != nil {
		return nil, err
	}

	return newRoot, nil
}

// insertNonFull descends from a node known not to be full, splitting any
// full child it encounters before recursing into it.
func (e *Engine) insertNonFull(n *node.Node, key, value uint64) error {
	if n.IsLeaf() {
		pos := keyPosition(n, key)
		n.Keys = insertUint64(n.Keys, pos, key)
		n.Values = insertUint64(n.Values, pos, value)
		return e.cache.WriteNode(n)
	}

	i := childIndex(n, key)
	child, err := e.cache.ReadNode(n.Children[i])
	if err != nil {
		return err
	}

	if child.IsFull() {
		z, err := e.splitChild(n, i, child)
		if err != nil {
			return err
		}
		if err := e.cache.WriteNode(n); err != nil {
			return err
		}
		if err := e.cache.WriteNode(child); err != nil {
			return err
		}
		if err := e.cache.WriteNode(z); err != nil {
			return err
		}

		// Re-select between the two halves by comparing key to the
		// median just promoted into n at index i.
		if key > n.Keys[i] {
			child = z
		}
	}

	return e.insertNonFull(child, key, value)
}

// splitChild splits the full node y, which is current.Children[i], into y
// (left half) and a freshly allocated sibling z (right half), promoting
// the median key/value into current at index i. Left keeps indices
// [0, t-1), the median is index t-1, and z takes [t, MaxKeys).
func (e *Engine) splitChild(current *node.Node, i int, y *node.Node) (*node.Node, error) {
	const t = node.MinimumDegree

	zID, err := e.header.AllocateBlockID()
	if err != nil {
		return nil, err
	}
	z := node.New(zID, current.BlockID)

	medianKey := y.Keys[t-1]
	medianValue := y.Values[t-1]

	z.Keys = append([]uint64{}, y.Keys[t:]...)
	z.Values = append([]uint64{}, y.Values[t:]...)

	if !y.IsLeaf() {
		z.Children = append([]uint64{}, y.Children[t:]...)
		y.Children = y.Children[:t]
	}

	y.Keys = y.Keys[:t-1]
	y.Values = y.Values[:t-1]
	y.ParentBlockID = current.BlockID

	current.Keys = insertUint64(current.Keys, i, medianKey)
	current.Values = insertUint64(current.Values, i, medianValue)
	current.Children = insertUint64(current.Children, i+1, zID)

	return z, nil
}

// childIndex returns the smallest index i such that key < node.Keys[i], or
// len(node.Keys) if key is greater than every key in the node. Its value
// is both the child to descend into (n.Children[i] holds a block id) and,
// for a leaf, the insertion position.
func childIndex(n *node.Node, key uint64) int {
	lo, hi := 0, len(n.Keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if key < n.Keys[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// keyPosition returns the position at which key resides if present, or the
// position it would be inserted at to keep Keys ascending.
func keyPosition(n *node.Node, key uint64) int {
	lo, hi := 0, len(n.Keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if n.Keys[mid] < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func insertUint64(s []uint64, pos int, v uint64) []uint64 {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

// Depth returns the number of levels from the root to a leaf (1 = root is
// itself a leaf, 0 = empty tree). It visits every leaf and returns an error
// if any two leaves sit at different depths. Used by tests; not part of the
// public facade.
func (e *Engine) Depth() (int, error) {
	root := e.header.RootBlockID()
	if root == 0 {
		return 0, nil
	}
	return e.depth(root)
}

func (e *Engine) depth(blockID uint64) (int, error) {
	n, err := e.cache.ReadNode(blockID)
	if err != nil {
		return 0, err
	}
	if n.IsLeaf() {
		return 1, nil
	}
	d := 0
	for i, child := range n.Children {
		cd, err := e.depth(child)
		if err != nil {
			return 0, err
		}
		if i > 0 && cd != d {
			return 0, fmt.Errorf("btree: leaves under block %d at unequal depths %d and %d", blockID, d, cd)
		}
		d = cd
	}
	return d + 1, nil
}
