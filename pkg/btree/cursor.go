package btree

import "blocktree/pkg/node"

// Cursor performs a full, restartable in-order traversal of the tree.
// It holds a stack of (node, child-index) frames rather than materializing
// the whole key set, so traversal cost is bounded by tree depth at any
// point in time.
type Cursor struct {
	engine *Engine
	stack  []frame
	done   bool
	key    uint64
	value  uint64
}

type frame struct {
	n   *node.Node
	idx int
}

// NewCursor creates a cursor positioned before the first key. Calling Next
// advances it to the first pair.
func NewCursor(e *Engine) (*Cursor, error) {
	c := &Cursor{engine: e}
	root := e.header.RootBlockID()
	if root == 0 {
		c.done = true
		return c, nil
	}

	n, err := e.cache.ReadNode(root)
	if err != nil {
		return nil, err
	}
	c.stack = []frame{{n: n, idx: 0}}
	if err := c.descendToLeftmost(n); err != nil {
		return nil, err
	}
	return c, nil
}

// descendToLeftmost pushes frames down the leftmost child chain starting
// from n so the next key returned is the smallest in the subtree rooted
// at n.
func (c *Cursor) descendToLeftmost(n *node.Node) error {
	for !n.IsLeaf() {
		child, err := c.engine.cache.ReadNode(n.Children[0])
		if err != nil {
			return err
		}
		c.stack = append(c.stack, frame{n: child, idx: 0})
		n = child
	}
	return nil
}

// Next advances the cursor and reports whether a pair was produced. Pairs
// are emitted in ascending key order.
func (c *Cursor) Next() (bool, error) {
	if c.done {
		return false, nil
	}

	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		n := top.n

		if n.IsLeaf() {
			if top.idx < len(n.Keys) {
				c.key, c.value = n.Keys[top.idx], n.Values[top.idx]
				top.idx++
				return true, nil
			}
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}

		// Interior node: emit key[idx] after having descended into
		// child[idx], then advance to child[idx+1].
		if top.idx < len(n.Keys) {
			key, value := n.Keys[top.idx], n.Values[top.idx]
			top.idx++
			child, err := c.engine.cache.ReadNode(n.Children[top.idx])
			if err != nil {
				return false, err
			}
			c.stack = append(c.stack, frame{n: child, idx: 0})
			if err := c.descendToLeftmost(child); err != nil {
				return false, err
			}
			c.key, c.value = key, value
			return true, nil
		}

		c.stack = c.stack[:len(c.stack)-1]
	}

	c.done = true
	return false, nil
}

// Key returns the key at the cursor's current position. Valid only after
// Next has returned true.
func (c *Cursor) Key() uint64 { return c.key }

// Value returns the value at the cursor's current position. Valid only
// after Next has returned true.
func (c *Cursor) Value() uint64 { return c.value }

// Traverse visits every (key, value) pair in ascending key order, calling
// fn for each. It stops and returns fn's error if fn returns one.
func Traverse(e *Engine, fn func(key, value uint64) error) error {
	cur, err := NewCursor(e)
	if err != nil {
		return err
	}
	for {
		ok, err := cur.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(cur.Key(), cur.Value()); err != nil {
			return err
		}
	}
}
