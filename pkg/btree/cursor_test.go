package btree

import (
	"testing"

	"blocktree/pkg/blockfile"
	"blocktree/pkg/cache"
)

func TestCursor_EmptyTree(t *testing.T) {
	_, e := newEngine(t)

	cur, err := NewCursor(e)
	if err != nil {
		t.Fatalf("NewCursor() error = %v", err)
	}
	ok, err := cur.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ok {
		t.Error("Next() on empty tree returned true")
	}
}

func TestCursor_VisitsAllKeysInAscendingOrder(t *testing.T) {
	_, e := newEngine(t)

	inserted := []uint64{50, 10, 90, 30, 70, 20, 80, 40, 60, 5, 15, 25, 35, 45, 55, 65, 75, 85, 95, 1}
	for _, k := range inserted {
		if err := e.Insert(k, k*2, errDup); err != nil {
			t.Fatalf("Insert(%d) error = %v", k, err)
		}
	}

	var got []uint64
	cur, err := NewCursor(e)
	if err != nil {
		t.Fatalf("NewCursor() error = %v", err)
	}
	for {
		ok, err := cur.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		if cur.Value() != cur.Key()*2 {
			t.Errorf("Value() = %d for key %d, want %d", cur.Value(), cur.Key(), cur.Key()*2)
		}
		got = append(got, cur.Key())
	}

	if len(got) != len(inserted) {
		t.Fatalf("traversal produced %d keys, want %d", len(got), len(inserted))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("traversal not ascending at index %d: %d then %d", i, got[i-1], got[i])
		}
	}
}

func TestCursor_SurvivesSplitsDuringConstruction(t *testing.T) {
	path := t.TempDir() + "/t.idx"
	bf, err := blockfile.Create(path, false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer bf.Close()
	e := New(bf, cache.New(bf))

	const n = 300
	for i := uint64(0); i < n; i++ {
		if err := e.Insert(i, i, errDup); err != nil {
			t.Fatalf("Insert(%d) error = %v", i, err)
		}
	}

	count := uint64(0)
	err = Traverse(e, func(key, value uint64) error {
		if key != count || value != count {
			t.Errorf("Traverse at position %d got key=%d value=%d", count, key, value)
		}
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	if count != n {
		t.Errorf("Traverse() visited %d keys, want %d", count, n)
	}
}
