package cache

import (
	"testing"

	"blocktree/pkg/blockfile"
	"blocktree/pkg/node"
)

func newStore(t *testing.T) *blockfile.File {
	t.Helper()
	path := t.TempDir() + "/t.idx"
	bf, err := blockfile.Create(path, false)
	if err != nil {
		t.Fatalf("blockfile.Create() error = %v", err)
	}
	t.Cleanup(func() { bf.Close() })
	return bf
}

func TestWriteNodeThenReadNode_HitsCache(t *testing.T) {
	store := newStore(t)
	c := New(store)

	n := node.New(1, 0)
	n.Keys = []uint64{5}
	n.Values = []uint64{50}

	if err := c.WriteNode(n); err != nil {
		t.Fatalf("WriteNode() error = %v", err)
	}

	got, err := c.ReadNode(1)
	if err != nil {
		t.Fatalf("ReadNode() error = %v", err)
	}
	if got != n {
		t.Error("ReadNode() did not return the cached pointer written by WriteNode()")
	}
}

func TestReadNode_MissFallsBackToDisk(t *testing.T) {
	store := newStore(t)
	c1 := New(store)

	n := node.New(2, 0)
	n.Keys = []uint64{7}
	n.Values = []uint64{70}
	if err := c1.WriteNode(n); err != nil {
		t.Fatalf("WriteNode() error = %v", err)
	}

	// A second cache over the same store has nothing cached and must
	// decode from disk.
	c2 := New(store)
	got, err := c2.ReadNode(2)
	if err != nil {
		t.Fatalf("ReadNode() error = %v", err)
	}
	if len(got.Keys) != 1 || got.Keys[0] != 7 || got.Values[0] != 70 {
		t.Errorf("ReadNode() = %+v, want Keys=[7] Values=[70]", got)
	}
}

func TestWriteNode_AdvancesNextBlockID(t *testing.T) {
	store := newStore(t)
	c := New(store)

	n := node.New(9, 0)
	if err := c.WriteNode(n); err != nil {
		t.Fatalf("WriteNode() error = %v", err)
	}

	if store.NextBlockID() != 10 {
		t.Errorf("NextBlockID() = %d, want 10", store.NextBlockID())
	}
}

func TestClear_ForcesRereadFromDisk(t *testing.T) {
	store := newStore(t)
	c := New(store)

	n := node.New(1, 0)
	n.Keys = []uint64{1}
	n.Values = []uint64{1}
	if err := c.WriteNode(n); err != nil {
		t.Fatalf("WriteNode() error = %v", err)
	}

	c.Clear()

	got, err := c.ReadNode(1)
	if err != nil {
		t.Fatalf("ReadNode() error = %v", err)
	}
	if got == n {
		t.Error("ReadNode() returned the pre-Clear pointer; cache was not actually cleared")
	}
}
