package node

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	n := &Node{
		BlockID:       1,
		ParentBlockID: 0,
		Keys:          []uint64{10, 20, 30},
		Values:        []uint64{100, 200, 300},
	}

	buf := Encode(n)
	if len(buf) != Size {
		t.Fatalf("Encode() produced %d bytes, want %d", len(buf), Size)
	}

	got, err := Decode(buf[:])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.BlockID != n.BlockID || got.ParentBlockID != n.ParentBlockID {
		t.Errorf("ids = (%d, %d), want (%d, %d)", got.BlockID, got.ParentBlockID, n.BlockID, n.ParentBlockID)
	}
	if len(got.Keys) != len(n.Keys) {
		t.Fatalf("len(Keys) = %d, want %d", len(got.Keys), len(n.Keys))
	}
	for i := range n.Keys {
		if got.Keys[i] != n.Keys[i] || got.Values[i] != n.Values[i] {
			t.Errorf("cell %d = (%d,%d), want (%d,%d)", i, got.Keys[i], got.Values[i], n.Keys[i], n.Values[i])
		}
	}
	if !got.IsLeaf() {
		t.Error("IsLeaf() = false, want true for a node with no children")
	}
}

func TestEncodeDecodeInteriorNode(t *testing.T) {
	n := &Node{
		BlockID:       5,
		ParentBlockID: 1,
		Keys:          []uint64{50},
		Values:        []uint64{500},
		Children:      []uint64{2, 3},
	}

	buf := Encode(n)
	got, err := Decode(buf[:])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.IsLeaf() {
		t.Error("IsLeaf() = true, want false for a node with children")
	}
	if len(got.Children) != 2 || got.Children[0] != 2 || got.Children[1] != 3 {
		t.Errorf("Children = %v, want [2 3]", got.Children)
	}
}

func TestDecodeCompactsZeroChildSlots(t *testing.T) {
	n := &Node{
		BlockID:  7,
		Keys:     []uint64{1, 2},
		Values:   []uint64{1, 2},
		Children: []uint64{11, 0, 12}, // should never happen in practice, but
	}
	buf := Encode(n) // encode will place 11, 0, 12 positionally...

	// Encode writes children positionally; a genuine zero entry in the
	// middle would be ambiguous on disk (0 always means "no child"), so
	// construct the on-disk image directly to exercise Decode's
	// compaction of zero slots instead.
	_ = buf
	var raw [Size]byte
	leafImage := Encode(&Node{BlockID: 7, Keys: n.Keys, Values: n.Values})
	copy(raw[:], leafImage[:])
	// place children with a gap at index 1 to verify compaction semantics
	putChild := func(i int, v uint64) {
		off := offsetChildren + i*8
		raw[off] = byte(v >> 56)
		raw[off+1] = byte(v >> 48)
		raw[off+2] = byte(v >> 40)
		raw[off+3] = byte(v >> 32)
		raw[off+4] = byte(v >> 24)
		raw[off+5] = byte(v >> 16)
		raw[off+6] = byte(v >> 8)
		raw[off+7] = byte(v)
	}
	putChild(0, 11)
	putChild(2, 12)

	got, err := Decode(raw[:])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Children) != 2 || got.Children[0] != 11 || got.Children[1] != 12 {
		t.Errorf("Children = %v, want [11 12] (zero slots dropped, order preserved)", got.Children)
	}
}

func TestDecodeRejectsOversizedKeyCount(t *testing.T) {
	var raw [Size]byte
	raw[offsetKeyCount+7] = MaxKeys + 1 // key_count = 20, big-endian low byte

	_, err := Decode(raw[:])
	if err != ErrCorrupt {
		t.Errorf("Decode() error = %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsSelfReferentialChild(t *testing.T) {
	n := &Node{BlockID: 3, Children: []uint64{3}}
	buf := Encode(n)

	_, err := Decode(buf[:])
	if err != ErrCorrupt {
		t.Errorf("Decode() error = %v, want ErrCorrupt", err)
	}
}

func TestIsFull(t *testing.T) {
	n := &Node{Keys: make([]uint64, MaxKeys)}
	if !n.IsFull() {
		t.Error("IsFull() = false, want true at MaxKeys")
	}
	n.Keys = n.Keys[:MaxKeys-1]
	if n.IsFull() {
		t.Error("IsFull() = true, want false below MaxKeys")
	}
}
