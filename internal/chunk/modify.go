package chunk

import "github.com/shisoft/lightning/internal/hashfn"

// OpKind selects which mutation Modify attempts against a probed slot
// (spec §4.3).
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpAttemptInsert
	OpSentinel
	OpEmpty
)

// Op bundles one mutation request. Payload must already have had the Prime
// bit masked off by the caller (see MaskPayload) for Insert/AttemptInsert;
// it is ignored for Sentinel/Empty.
type Op[V any] struct {
	Kind    OpKind
	Payload uint64
	Attach  V
}

// ResultKind enumerates the outcomes Modify can produce.
type ResultKind uint8

const (
	ResDone ResultKind = iota
	ResReplaced
	ResFail
	ResSentinel
	ResNotFound
	ResTableFull
)

// Result is the outcome of one Modify call. Attach is only meaningful for
// ResReplaced (from OpEmpty or OpInsert): it holds whatever attachment
// value was stored at the replaced slot immediately before it was erased, so
// callers never observe a zeroed-out attachment for data they just removed.
type Result[V any] struct {
	Kind  ResultKind
	Value uint64 // prior payload for Replaced/Fail
	Attach V
	Index int
}

// Modify walks the probe sequence for up to Capacity slots, driving the
// per-slot state machine described in spec §4.3 (Cases A–D) via CAS. It
// never blocks: every retry is either a bounded CAS spin on the current slot
// or an advance to the next slot.
func Modify[V any](c *Chunk[V], hasher hashfn.Hasher, key uint64, op Op[V]) Result[V] {
	idx := hasher.Hash(key) & c.capMask
	var replaced uint64
	var replacedAttach V
	hasReplaced := false

	for count := uint64(0); count < c.capacity; {
		res, done, retrySlot := tryModifySlot(c, idx, key, op, &replaced, &replacedAttach, &hasReplaced)
		if done {
			return res
		}
		if retrySlot {
			continue // Case A CAS race: restart this slot, do not advance.
		}
		idx = (idx + 1) & c.capMask
		count++
	}

	if op.Kind == OpInsert || op.Kind == OpAttemptInsert {
		return Result[V]{Kind: ResTableFull}
	}
	return Result[V]{Kind: ResNotFound}
}

// tryModifySlot implements one probe step. done=true means the caller should
// return res immediately. retrySlot=true means the caller must re-attempt
// the very same idx (a concurrent writer raced the tombstone CAS). Otherwise
// the caller advances to the next slot.
func tryModifySlot[V any](c *Chunk[V], idx uint64, key uint64, op Op[V], replaced *uint64, replacedAttach *V, hasReplaced *bool) (res Result[V], done bool, retrySlot bool) {
	slot := &c.region.Entries[idx]
	k := slot.Key.Load()

	switch {
	case k == key:
		raw := slot.Value.Load()
		val := Parse(raw)
		switch val.Kind {
		case KindLive, KindPrime:
			// Case A: our key, live or primed value.
			switch op.Kind {
			case OpSentinel:
				// A relaxed store suffices: the preceding publisher already
				// released, and readers that observe Sentinel consult the
				// new chunk rather than trusting this word further.
				slot.Value.Store(SentinelWord)
				c.attach.Erase(int(idx), key)
				return Result[V]{Kind: ResDone, Index: int(idx)}, true, false
			case OpEmpty, OpInsert:
				if !slot.Value.CompareAndSwap(raw, 0) {
					return Result[V]{}, false, true
				}
				// Capture the attachment before erasing it so a remove
				// caller sees the value it actually deleted, not a zeroed
				// slot.
				prevAttach := c.attach.Get(int(idx), key)
				c.attach.Erase(int(idx), key)
				*replaced = val.Payload
				*replacedAttach = prevAttach
				*hasReplaced = true
				if op.Kind == OpEmpty {
					return Result[V]{Kind: ResReplaced, Value: val.Payload, Attach: prevAttach, Index: int(idx)}, true, false
				}
				// Insert: slot is now tombstoned; a fresh slot is claimed
				// below as probing continues.
				return Result[V]{}, false, false
			case OpAttemptInsert:
				return Result[V]{Kind: ResFail, Value: val.Payload, Index: int(idx)}, true, false
			}
		case KindSentinel:
			// Case C: authoritative value has moved to the new chunk.
			return Result[V]{Kind: ResSentinel, Index: int(idx)}, true, false
		case KindEmpty:
			// Key present, value tombstoned by someone else: keep probing.
			return Result[V]{}, false, false
		}

	case k == EmptyKey:
		// Case D: empty slot, attempt to claim it.
		switch op.Kind {
		case OpInsert, OpAttemptInsert:
			if slot.Value.CompareAndSwap(0, op.Payload) {
				c.attach.Set(int(idx), key, op.Attach)
				slot.Key.Store(key)
				if *hasReplaced {
					return Result[V]{Kind: ResReplaced, Value: *replaced, Attach: *replacedAttach, Index: int(idx)}, true, false
				}
				return Result[V]{Kind: ResDone, Index: int(idx)}, true, false
			}
			return Result[V]{}, false, false // lost the race, keep probing
		case OpSentinel:
			if slot.Value.CompareAndSwap(0, SentinelWord) {
				slot.Key.Store(key)
				return Result[V]{Kind: ResDone, Index: int(idx)}, true, false
			}
			return Result[V]{}, false, false
		case OpEmpty:
			return Result[V]{Kind: ResFail, Index: int(idx)}, true, false
		}
	}

	// Slot occupied by a different key: keep probing.
	return Result[V]{}, false, false
}
