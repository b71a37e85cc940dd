package epoch

import (
	"sync"
	"testing"
)

func TestDeferDestroyRunsAfterUnpin(t *testing.T) {
	m := NewManager()
	g := m.Pin()

	ran := false
	g.DeferDestroy(func() { ran = true })
	g.Unpin()

	// Advancing the epoch enough times drains the bag the destructor landed
	// in; each Pin/Unpin pair opportunistically tries to advance.
	for i := 0; i < ringSize*2; i++ {
		h := m.Pin()
		h.Unpin()
	}

	if !ran {
		t.Fatal("deferred destructor never ran")
	}
}

func TestActivePinBlocksReclamation(t *testing.T) {
	m := NewManager()
	holder := m.Pin()

	ran := false
	g := m.Pin()
	g.DeferDestroy(func() { ran = true })
	g.Unpin()

	for i := 0; i < ringSize*2; i++ {
		h := m.Pin()
		h.Unpin()
	}

	if ran {
		t.Fatal("destructor ran while an epoch it could still be observed from remained pinned")
	}

	holder.Unpin()
	for i := 0; i < ringSize*2; i++ {
		h := m.Pin()
		h.Unpin()
	}
	if !ran {
		t.Fatal("destructor never ran after the blocking pin released")
	}
}

func TestConcurrentPinUnpin(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 256; j++ {
				g := m.Pin()
				g.DeferDestroy(func() {})
				g.Unpin()
			}
		}()
	}
	wg.Wait()
}
