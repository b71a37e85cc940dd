package chunk

// RawEntry is one (key, payload, attachment) triple surfaced by a
// best-effort snapshot scan (spec §4.6).
type RawEntry[V any] struct {
	Key     uint64
	Value   uint64
	Attach  V
}

// AttachmentGet reads the attachment stored at index for key. Callers must
// only invoke this after having already observed a live/primed value for
// that slot's key (spec §6, "Attachment interface").
func (c *Chunk[V]) AttachmentGet(index int, key uint64) V {
	return c.attach.Get(index, key)
}

// All walks every slot once and returns the live/primed entries found. It
// provides no snapshot isolation: entries inserted or removed concurrently
// may be included or omitted arbitrarily, though every reported triple was a
// real state of some slot during the call (spec §4.6, §5).
func All[V any](c *Chunk[V]) []RawEntry[V] {
	res := make([]RawEntry[V], 0, c.Occupation())
	for i := uint64(0); i < c.capacity; i++ {
		slot := &c.region.Entries[i]
		k := slot.Key.Load()
		if k == EmptyKey {
			continue
		}
		val := Parse(slot.Value.Load())
		switch val.Kind {
		case KindLive, KindPrime:
			res = append(res, RawEntry[V]{Key: k, Value: val.Payload, Attach: c.attach.Get(int(i), k)})
		}
	}
	return res
}
