// table.go holds Table, the raw word-keyed core: two atomic chunk pointers
// plus Get/Insert/Remove/Entries/Contains/Clone/Close. Growth happens
// through a cooperative, in-place incremental resize that hands a probe off
// from an "old" chunk to a "new" chunk via a prime -> sentinel -> strip
// protocol (see internal/chunk); the migrator itself lives in resize.go.
//
// © 2025 Lightning authors. MIT License.
package lightning

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shisoft/lightning/internal/chunk"
	"github.com/shisoft/lightning/internal/chunkalloc"
	"github.com/shisoft/lightning/internal/epoch"
	"github.com/shisoft/lightning/internal/hashfn"
)

// Table is the word-keyed lock-free hash table façade. It owns two atomic
// chunk pointers — the currently active chunk and, during a resize, the
// chunk being migrated into — plus the epoch manager that defers a retired
// chunk's destruction until no in-flight operation can still observe it.
type Table[V any] struct {
	chunk    atomic.Pointer[chunk.Chunk[V]]
	newChunk atomic.Pointer[chunk.Chunk[V]]

	reclaim       *epoch.Manager
	newAttachment chunk.Factory[V]
	allocator     chunkalloc.Allocator
	hasher        hashfn.Hasher
	logger        *zap.Logger
	metrics       metricsSink
	maxRetries    int
	resizes       atomic.Uint64
}

// NewTable constructs a Table with an initial capacity (must be a power of
// two, >= 2) and the attachment Factory appropriate for V (see
// chunk.NewNullAttachment / chunk.NewObjectAttachment).
func NewTable[V any](capacity int, newAttachment chunk.Factory[V], opts ...Option) (*Table[V], error) {
	if !isPowerOfTwo(capacity) {
		return nil, ErrInvalidCapacity
	}
	cfg := defaultConfig()
	applyOptions(cfg, opts)

	t := &Table[V]{
		reclaim:       epoch.NewManager(),
		newAttachment: newAttachment,
		allocator:     cfg.allocator,
		hasher:        cfg.hasher,
		logger:        cfg.logger,
		metrics:       newMetricsSink(cfg.registry),
		maxRetries:    cfg.maxRetries,
	}
	t.chunk.Store(chunk.AllocWith(capacity, newAttachment, cfg.allocator))
	t.metrics.setCapacity(uint64(capacity))
	return t, nil
}

// Get looks up key. When wantAttachment is false the attachment lookup is
// skipped entirely — useful for WordMap, which has no attachment to fetch.
func (t *Table[V]) Get(key uint64, wantAttachment bool) (payload uint64, attach V, ok bool) {
	g := t.reclaim.Pin()
	defer g.Unpin()

	cur := t.chunk.Load()
	for {
		val, idx := chunk.Get(cur, t.hasher, key)
		switch val.Kind {
		case chunk.KindLive, chunk.KindPrime:
			if wantAttachment {
				attach = cur.AttachmentGet(idx, key)
			}
			return val.Payload, attach, true
		case chunk.KindSentinel:
			// Case C (spec §4.2): authoritative value moved to the new
			// chunk. If it isn't visible yet the key simply isn't there.
			nc := t.newChunk.Load()
			if nc == nil {
				var zero V
				return 0, zero, false
			}
			cur = nc
			continue
		default: // KindEmpty
			var zero V
			return 0, zero, false
		}
	}
}

// Contains reports whether key is present, without fetching its attachment.
func (t *Table[V]) Contains(key uint64) bool {
	_, _, ok := t.Get(key, false)
	return ok
}

// Insert publishes (key, payload, attach), replacing any prior live value
// for key. payload is masked to clear the reserved Prime bit before use
// (spec §9, payload-bit reservation). It reports the prior payload, if any.
func (t *Table[V]) Insert(key uint64, payload uint64, attach V) (prior uint64, hadPrior bool, err error) {
	g := t.reclaim.Pin()
	defer g.Unpin()

	payload = chunk.MaskPayload(payload)
	retries := 0

	for {
		curChunk := t.chunk.Load()
		target := curChunk
		copying := false
		if nc := t.newChunk.Load(); nc != nil {
			target = nc
			copying = true
		} else if curChunk.NeedsGrowth() {
			t.migrate(curChunk, g)
			continue // reload chunk/newChunk and retry against them
		}

		res := chunk.Modify(target, t.hasher, key, chunk.Op[V]{Kind: chunk.OpInsert, Payload: payload, Attach: attach})
		switch res.Kind {
		case chunk.ResDone:
			hadPrior = false
		case chunk.ResReplaced, chunk.ResFail:
			prior, hadPrior = res.Value, true
		case chunk.ResSentinel:
			// Open Question 1: retry against the new chunk, or against the
			// chunk that replaced curChunk once its migration has finished,
			// rather than silently dropping the write.
			if t.newChunk.Load() != nil || t.chunk.Load() != curChunk {
				t.metrics.incSentinelRetry()
				continue
			}
			return 0, false, nil
		case chunk.ResTableFull:
			t.metrics.incTableFullRetry()
			retries++
			if retries > t.maxRetries {
				t.logger.Error("table full: insertion outpaced migration",
					zap.Uint64("key", key), zap.Int("retries", retries))
				return 0, false, ErrTableFull
			}
			t.logger.Warn("table full, forcing resize and retrying",
				zap.Uint64("key", key), zap.Int("attempt", retries))
			// Open Question 3: occupancy accounting lagged reality under
			// contention; force a resize regardless of NeedsGrowth.
			t.migrate(curChunk, g)
			continue
		}

		if copying {
			fenceSeqCst()
			chunk.Modify(curChunk, t.hasher, key, chunk.Op[V]{Kind: chunk.OpSentinel})
		}
		target.AddOccupation(1)
		t.metrics.setOccupation(target.Occupation())
		return prior, hadPrior, nil
	}
}

// Remove deletes key if present and returns the payload and attachment that
// were stored for it.
func (t *Table[V]) Remove(key uint64) (payload uint64, attach V, ok bool) {
	g := t.reclaim.Pin()
	defer g.Unpin()

	oldChunk := t.chunk.Load()
	newChunkPtr := t.newChunk.Load()
	copying := newChunkPtr != nil
	target := oldChunk
	if copying {
		target = newChunkPtr
	}

	res := chunk.Modify(target, t.hasher, key, chunk.Op[V]{Kind: chunk.OpEmpty})
	switch res.Kind {
	case chunk.ResDone, chunk.ResReplaced:
		if copying {
			fenceSeqCst()
			chunk.Modify(oldChunk, t.hasher, key, chunk.Op[V]{Kind: chunk.OpSentinel})
		}
		return res.Value, res.Attach, true
	case chunk.ResNotFound, chunk.ResFail:
		if !copying {
			var zero V
			return 0, zero, false
		}
		// Open Question 2: the entry may not have migrated yet. Retry
		// against the old chunk independently — never mix attachment
		// indices across chunks, report whichever attempt actually found
		// the key.
		oldRes := chunk.Modify(oldChunk, t.hasher, key, chunk.Op[V]{Kind: chunk.OpEmpty})
		if oldRes.Kind == chunk.ResDone || oldRes.Kind == chunk.ResReplaced {
			return oldRes.Value, oldRes.Attach, true
		}
		var zero V
		return 0, zero, false
	default:
		var zero V
		return 0, zero, false
	}
}

// Entries returns a best-effort snapshot of every live entry across both the
// active chunk and, if a migration is in flight, the chunk being migrated
// into (spec §4.6). It provides no isolation guarantees.
func (t *Table[V]) Entries() []chunk.RawEntry[V] {
	g := t.reclaim.Pin()
	defer g.Unpin()

	old := t.chunk.Load()
	res := chunk.All(old)
	if nc := t.newChunk.Load(); nc != nil && nc != old {
		res = append(res, chunk.All(nc)...)
	}
	return res
}

// Stats is a point-in-time snapshot of table health, surfaced for debug
// endpoints such as the one cmd/lightning-inspect polls.
type Stats struct {
	Capacity   uint64
	Occupation uint64
	Migrating  bool
	Resizes    uint64
}

// Stat returns the current Stats for the table.
func (t *Table[V]) Stat() Stats {
	cur := t.chunk.Load()
	return Stats{
		Capacity:   cur.Capacity(),
		Occupation: cur.Occupation(),
		Migrating:  t.newChunk.Load() != nil,
		Resizes:    t.resizes.Load(),
	}
}

// Clone produces an independent copy of the table's current contents,
// mirroring ShisoftResearch/Lightning's Table::clone. It reconstructs each
// chunk by replaying Insert against fresh chunks rather than copying raw
// bytes, which is simpler and safe under Go's GC-managed attachments.
func (t *Table[V]) Clone() *Table[V] {
	g := t.reclaim.Pin()
	defer g.Unpin()

	clone := &Table[V]{
		reclaim:       epoch.NewManager(),
		newAttachment: t.newAttachment,
		allocator:     t.allocator,
		hasher:        t.hasher,
		logger:        t.logger,
		metrics:       t.metrics,
		maxRetries:    t.maxRetries,
	}
	src := t.chunk.Load()
	dst := cloneChunk(src, t.newAttachment, t.allocator, t.hasher)
	clone.chunk.Store(dst)
	if nc := t.newChunk.Load(); nc != nil && nc != src {
		clone.newChunk.Store(cloneChunk(nc, t.newAttachment, t.allocator, t.hasher))
	}
	return clone
}

func cloneChunk[V any](src *chunk.Chunk[V], factory chunk.Factory[V], allocator chunkalloc.Allocator, hasher hashfn.Hasher) *chunk.Chunk[V] {
	dst := chunk.AllocWith(int(src.Capacity()), factory, allocator)
	for _, e := range chunk.All(src) {
		chunk.Modify(dst, hasher, e.Key, chunk.Op[V]{Kind: chunk.OpInsert, Payload: e.Value, Attach: e.Attach})
		dst.AddOccupation(1)
	}
	return dst
}

// Close hands both chunks' backing memory to the table's epoch manager for
// deferred release (spec §5). The release runs when a later Pin on this
// table advances the epoch past them; Close itself does not wait for it.
func (t *Table[V]) Close() {
	g := t.reclaim.Pin()
	old := t.chunk.Load()
	g.DeferDestroy(func() { old.Destroy() })
	if nc := t.newChunk.Load(); nc != nil && nc != old {
		g.DeferDestroy(func() { nc.Destroy() })
	}
	g.Unpin()
}

// fenceSeqCst documents the point spec §4.3/§4.4/§4.5 require a SeqCst fence
// between publishing a value in the new chunk and sentinelizing the old one.
// Go's sync/atomic package exposes no standalone fence primitive; ordering
// here is instead supplied by the CompareAndSwap/Store calls themselves,
// which the Go memory model already guarantees behave as sequentially
// consistent atomic operations on the variables they touch. This is an
// accepted simplification relative to the explicit-fence original.
func fenceSeqCst() {}
