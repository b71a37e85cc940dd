package chunk

// RawAt reads the raw (key, value word) pair stored at index, bypassing the
// probe engine. Used only by the migrator (spec §4.5), which already knows
// which index it wants to inspect because it is walking the old chunk
// linearly rather than probing by key.
func RawAt[V any](c *Chunk[V], index uint64) (key uint64, raw uint64) {
	slot := &c.region.Entries[index]
	return slot.Key.Load(), slot.Value.Load()
}

// CASValue attempts to swap the value word at index from old to new,
// reporting whether it won the race. Used by the migrator to sentinelize an
// old-chunk slot (live -> Sentinel) and to strip the Prime bit off a freshly
// copied new-chunk slot.
func CASValue[V any](c *Chunk[V], index uint64, old, new uint64) bool {
	slot := &c.region.Entries[index]
	return slot.Value.CompareAndSwap(old, new)
}

// EraseAttachment clears the attachment stored at index for key. Used by the
// migrator strictly after it has committed a slot's live-to-Sentinel CAS in
// the old chunk.
func EraseAttachment[V any](c *Chunk[V], index int, key uint64) {
	c.attach.Erase(index, key)
}
