package lightning

// resize.go implements the cooperative, incremental migration described in
// spec §4.5: install a new, larger chunk; walk the old chunk slot by slot,
// copying each live entry across via the prime -> sentinel -> strip
// handoff; then publish the new chunk as current and retire the old one
// through the epoch manager.
//
// © 2025 Lightning authors. MIT License.

import (
	"go.uber.org/zap"

	"github.com/shisoft/lightning/internal/chunk"
	"github.com/shisoft/lightning/internal/epoch"
)

// growthMultiplier matches spec §4.5's growth policy: small tables grow
// aggressively (x16) to amortize allocation cost while the probe chain is
// still cheap to walk; past 2048 slots growth tapers to x2.
func growthMultiplier(oldCapacity uint64) uint64 {
	if oldCapacity < 2048 {
		return 16
	}
	return 2
}

// migrate installs a fresh chunk sized per growthMultiplier (unless another
// goroutine has already installed one, in which case this call is a noop)
// and copies every live entry from old into it, then swaps it in as the
// table's active chunk. Safe to call from multiple goroutines concurrently:
// exactly one installs newChunk, the rest fall through immediately.
func (t *Table[V]) migrate(old *chunk.Chunk[V], g *epoch.Guard) {
	newCap := old.Capacity() * growthMultiplier(old.Capacity())
	candidate := chunk.AllocWith(int(newCap), t.newAttachment, t.allocator)

	if !t.newChunk.CompareAndSwap(nil, candidate) {
		candidate.Destroy()
		return // another goroutine already started migrating this chunk
	}

	t.logger.Info("resizing",
		zap.Uint64("old_capacity", old.Capacity()),
		zap.Uint64("new_capacity", newCap))
	t.metrics.incResize()
	t.resizes.Add(1)

	newC := candidate
	var copied uint64
	for i := uint64(0); i < old.Capacity(); i++ {
		for {
			retry, didCopy := t.migrateSlot(old, newC, i)
			if didCopy {
				copied++
			}
			if !retry {
				break
			}
		}
	}
	newC.AddOccupation(copied)

	if !t.chunk.CompareAndSwap(old, newC) {
		// Invariant 6 guarantees the installer of newChunk is also the sole
		// publisher of chunk; a failed CAS here means that invariant broke.
		// Fail fast rather than retiring old or clearing newChunk: either
		// would strand newC (concurrent inserts already targeting it via
		// copying would be lost) and double-retire old.
		t.logger.Error("migration invariant violated: active chunk changed mid-migration")
		panic(ErrInvariantViolation)
	}
	g.DeferDestroy(func() { old.Destroy() })
	t.newChunk.Store(nil)

	t.metrics.setCapacity(newC.Capacity())
	t.metrics.setOccupation(newC.Occupation())
}

// migrateSlot attempts to copy the entry at old[i] into newC once. It
// reports retry=true when the caller must re-attempt the same index (the
// old slot's live-to-sentinel CAS lost a race against a concurrent
// Insert/Remove) and copied=true when a live entry was actually transferred
// (used to seed the new chunk's occupation counter).
func (t *Table[V]) migrateSlot(old, newC *chunk.Chunk[V], i uint64) (retry bool, copied bool) {
	key, raw := chunk.RawAt(old, i)
	if key == chunk.EmptyKey {
		return false, false
	}

	val := chunk.Parse(raw)
	switch val.Kind {
	case chunk.KindLive:
		primedVal := chunk.Primed(raw)
		attach := old.AttachmentGet(int(i), key)
		insRes := chunk.Modify(newC, t.hasher, key, chunk.Op[V]{Kind: chunk.OpAttemptInsert, Payload: primedVal, Attach: attach})
		switch insRes.Kind {
		case chunk.ResDone:
			fenceSeqCst()
			if !chunk.CASValue(old, i, raw, chunk.SentinelWord) {
				return true, false // a writer raced us; retry this slot
			}
			stripped := chunk.Stripped(primedVal)
			if chunk.CASValue(newC, uint64(insRes.Index), primedVal, stripped) {
				chunk.EraseAttachment(old, int(i), key)
				return false, true
			}
			// A racing reader/writer already stripped or replaced the
			// word; the entry still reads as live (Prime is transparent
			// to Get), so there is nothing left to do for this slot.
			return false, true
		case chunk.ResFail:
			// A concurrent Insert already claimed this key in the new
			// chunk; its value is authoritative, ours is stale.
			return false, false
		default:
			t.logger.Error("migration invariant violated: unexpected modify result",
				zap.Uint64("key", key))
			return false, false
		}
	case chunk.KindPrime:
		t.logger.Error("migration invariant violated: prime observed in old chunk",
			zap.Uint64("key", key))
		return false, false
	default: // Sentinel, Empty
		return false, false
	}
}
