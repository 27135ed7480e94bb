// Package cache implements the node cache: a write-through mapping from
// block id to the most recently read or written node, scoped to a single
// open index file. The cache is advisory only — every lookup that misses
// falls back to decoding the block from disk, so correctness never depends
// on its hit rate.
package cache

import "blocktree/pkg/node"

// Store is the subset of the block file's behavior the cache needs: block
// granularity I/O plus the next_block_id header field the cache keeps in
// sync with on allocation.
type Store interface {
	ReadBlock(id uint64) ([512]byte, error)
	WriteBlock(id uint64, data []byte) error
	NextBlockID() uint64
	SetNextBlockID(id uint64) error
}

// Cache is the in-memory node cache, advisory and write-through over a
// Store.
type Cache struct {
	store Store
	nodes map[uint64]*node.Node
}

// New creates a cache backed by store. The cache starts empty; Open and
// Create each construct a fresh Cache rather than reusing one across files.
func New(store Store) *Cache {
	return &Cache{
		store: store,
		nodes: make(map[uint64]*node.Node),
	}
}

// ReadNode returns the cached node for id if present; otherwise it reads
// and decodes the block, caches the result, and returns it.
func (c *Cache) ReadNode(id uint64) (*node.Node, error) {
	if n, ok := c.nodes[id]; ok {
		return n, nil
	}

	block, err := c.store.ReadBlock(id)
	if err != nil {
		return nil, err
	}

	n, err := node.Decode(block[:])
	if err != nil {
		return nil, err
	}

	c.nodes[id] = n
	return n, nil
}

// WriteNode encodes n, writes it through to the store, and updates the
// cache entry. If n's block id is at or beyond the store's next_block_id,
// the cache advances and persists next_block_id to n.BlockID+1. This is a
// safety net: the tree engine also allocates ids explicitly via the store
// before constructing new nodes, so in practice this branch only confirms
// bookkeeping already done.
func (c *Cache) WriteNode(n *node.Node) error {
	block := node.Encode(n)
	if err := c.store.WriteBlock(n.BlockID, block[:]); err != nil {
		return err
	}

	c.nodes[n.BlockID] = n

	if n.BlockID >= c.store.NextBlockID() {
		if err := c.store.SetNextBlockID(n.BlockID + 1); err != nil {
			return err
		}
	}

	return nil
}

// Clear discards all cached nodes, so the next ReadNode of any id decodes
// the block from the store again.
func (c *Cache) Clear() {
	c.nodes = make(map[uint64]*node.Node)
}
