package lightning

import "testing"

func TestWordMapInsertGetRemove(t *testing.T) {
	m, err := NewWordMap(16)
	if err != nil {
		t.Fatalf("NewWordMap: %v", err)
	}
	defer m.Close()

	if _, had, err := m.Insert(0, 111); err != nil || had {
		t.Fatalf("insert key 0: had=%v err=%v", had, err)
	}
	if v, ok := m.Get(0); !ok || v != 111 {
		t.Fatalf("Get(0) = (%d, %v), want (111, true)", v, ok)
	}
	if !m.Contains(0) {
		t.Fatalf("Contains(0) = false, want true")
	}
	if v, ok := m.Remove(0); !ok || v != 111 {
		t.Fatalf("Remove(0) = (%d, %v), want (111, true)", v, ok)
	}
	if m.Contains(0) {
		t.Fatalf("Contains(0) after remove = true, want false")
	}
}

func TestWordMapKeyZeroDoesNotCollideWithEmptySentinel(t *testing.T) {
	m, err := NewWordMap(16)
	if err != nil {
		t.Fatalf("NewWordMap: %v", err)
	}
	defer m.Close()

	m.Insert(0, 10)
	m.Insert(1, 20)
	m.Insert(2, 30)

	for k, want := range map[uint64]uint64{0: 10, 1: 20, 2: 30} {
		if v, ok := m.Get(k); !ok || v != want {
			t.Fatalf("Get(%d) = (%d, %v), want (%d, true)", k, v, ok, want)
		}
	}
}

func TestWordMapEntriesUndoesKeyOffset(t *testing.T) {
	m, err := NewWordMap(16)
	if err != nil {
		t.Fatalf("NewWordMap: %v", err)
	}
	defer m.Close()

	m.Insert(3, 30)
	m.Insert(4, 40)

	entries := m.Entries()
	byKey := map[uint64]uint64{}
	for _, e := range entries {
		byKey[e.Key] = e.Value
	}
	if byKey[3] != 30 || byKey[4] != 40 {
		t.Fatalf("Entries() = %+v, want keys 3->30 and 4->40", entries)
	}
}
