package chunk

import "github.com/shisoft/lightning/internal/hashfn"

// Get runs the linear probe engine described in spec §4.2: compute the
// initial index from the hasher, walk at most Capacity slots, and return the
// first non-empty (live, primed or sentinel) value found for key, or
// KindEmpty if the key is absent.
//
// Reads use relaxed loads throughout — cross-thread visibility is supplied
// by the CAS that publishes a live value (see modify.go) and by the SeqCst
// fences the façade issues around migration, not by anything done here.
func Get[V any](c *Chunk[V], hasher hashfn.Hasher, key uint64) (Value, int) {
	idx := hasher.Hash(key) & c.capMask
	for count := uint64(0); count < c.capacity; count++ {
		slot := &c.region.Entries[idx]
		k := slot.Key.Load()
		if k == key {
			raw := slot.Value.Load()
			v := Parse(raw)
			if v.Kind != KindEmpty {
				return v, int(idx)
			}
			// Key present but value tombstoned: the same key may have been
			// re-inserted further along the probe sequence during a past
			// collision epoch, so keep walking.
		} else if k == EmptyKey {
			return Value{Kind: KindEmpty}, -1
		}
		idx = (idx + 1) & c.capMask
	}
	return Value{Kind: KindEmpty}, -1
}
