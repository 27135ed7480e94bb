// Package node implements the fixed-layout codec between a logical B-tree
// node and its 512-byte on-disk block image.
//
// Layout (big-endian, byte offsets within a block):
//
//	0    8   block_id
//	8    8   parent_block_id
//	16   8   key_count
//	24   152 keys[0..19]      (19 * 8 bytes, unused slots zero)
//	176  152 values[0..19]    (19 * 8 bytes, unused slots zero)
//	328  160 children[0..20]  (20 * 8 bytes, unused slots zero)
//	488  24  reserved, zero
package node

import (
	"encoding/binary"
	"errors"
)

const (
	// Size is the fixed on-disk size of a node block, matching the
	// block file's block granularity.
	Size = 512

	// MaxKeys is the maximum number of keys a node may hold (2t - 1).
	MaxKeys = 19

	// MaxChildren is the maximum number of child pointers an internal
	// node may hold (2t).
	MaxChildren = 20

	// MinimumDegree is the B-tree minimum degree t. Every non-root node
	// holds at least t-1 keys; splitting occurs at 2t-1 keys.
	MinimumDegree = 10

	offsetBlockID       = 0
	offsetParentBlockID = 8
	offsetKeyCount      = 16
	offsetKeys          = 24
	offsetValues        = offsetKeys + MaxKeys*8
	offsetChildren      = offsetValues + MaxKeys*8
	offsetReserved      = offsetChildren + MaxChildren*8
)

// ErrCorrupt is returned by Decode when a block's static invariants are
// violated: a key count outside [0, MaxKeys], or a child id that refers to
// the node's own block.
var ErrCorrupt = errors.New("node: corrupt block")

// Node is the in-memory representation of a single B-tree node. A node with
// no children is a leaf.
type Node struct {
	BlockID       uint64
	ParentBlockID uint64
	Keys          []uint64
	Values        []uint64
	Children      []uint64
}

// New creates an empty leaf node for the given block id.
func New(blockID, parentBlockID uint64) *Node {
	return &Node{
		BlockID:       blockID,
		ParentBlockID: parentBlockID,
	}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsFull reports whether the node already holds the maximum key count and
// must be split before another key can be inserted.
func (n *Node) IsFull() bool {
	return len(n.Keys) == MaxKeys
}

// Encode serializes the node into a fixed Size-byte block image.
func Encode(n *Node) [Size]byte {
	var buf [Size]byte

	binary.BigEndian.PutUint64(buf[offsetBlockID:], n.BlockID)
	binary.BigEndian.PutUint64(buf[offsetParentBlockID:], n.ParentBlockID)
	binary.BigEndian.PutUint64(buf[offsetKeyCount:], uint64(len(n.Keys)))

	for i, k := range n.Keys {
		binary.BigEndian.PutUint64(buf[offsetKeys+i*8:], k)
	}
	for i, v := range n.Values {
		binary.BigEndian.PutUint64(buf[offsetValues+i*8:], v)
	}
	for i, c := range n.Children {
		binary.BigEndian.PutUint64(buf[offsetChildren+i*8:], c)
	}

	return buf
}

// Decode parses a Size-byte block image into a Node. It returns ErrCorrupt
// if the key count exceeds MaxKeys or if any child slot names the node's
// own block id.
func Decode(data []byte) (*Node, error) {
	if len(data) < Size {
		return nil, ErrCorrupt
	}

	blockID := binary.BigEndian.Uint64(data[offsetBlockID:])
	parentBlockID := binary.BigEndian.Uint64(data[offsetParentBlockID:])
	keyCount := binary.BigEndian.Uint64(data[offsetKeyCount:])

	if keyCount > MaxKeys {
		return nil, ErrCorrupt
	}

	keys := make([]uint64, keyCount)
	for i := range keys {
		keys[i] = binary.BigEndian.Uint64(data[offsetKeys+i*8:])
	}

	values := make([]uint64, keyCount)
	for i := range values {
		values[i] = binary.BigEndian.Uint64(data[offsetValues+i*8:])
	}

	var children []uint64
	for i := 0; i < MaxChildren; i++ {
		c := binary.BigEndian.Uint64(data[offsetChildren+i*8:])
		if c == 0 {
			continue
		}
		if c == blockID {
			return nil, ErrCorrupt
		}
		children = append(children, c)
	}

	return &Node{
		BlockID:       blockID,
		ParentBlockID: parentBlockID,
		Keys:          keys,
		Values:        values,
		Children:      children,
	}, nil
}
