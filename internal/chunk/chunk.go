// Package chunk implements one power-of-two sized, open-addressed chunk of
// a lock-free word-keyed hash table: the entry layout, the value codec, the
// linear probe engine and the entry modifier state machine (spec §3, §4.1,
// §4.2, §4.3).
//
// Everything here is safe to call concurrently from any number of
// goroutines for a single Chunk; orchestration across two chunks during a
// migration lives one layer up, in the pkg façade.
//
// © 2025 Lightning authors. MIT License.
package chunk

import (
	"sync/atomic"

	"github.com/shisoft/lightning/internal/chunkalloc"
)

// occupancyFactor is the soft growth trigger from spec §3 ("occu_limit =
// floor(0.70 * capacity)").
const occupancyFactor = 0.70

// Chunk is one open-addressed array of (key, value) word pairs plus a
// parallel attachment array. Capacity is immutable once constructed.
type Chunk[V any] struct {
	capacity  uint64
	capMask   uint64
	occuLimit uint64

	occupation occupationCounter

	allocator chunkalloc.Allocator
	region    *chunkalloc.Region
	attach    Attachment[V]
}

// occupationCounter is the monotonic "slots ever claimed" counter from
// spec §3; it never decreases within a chunk's lifetime.
type occupationCounter struct{ n atomic.Uint64 }

func (o *occupationCounter) add(delta uint64) uint64 { return o.n.Add(delta) }
func (o *occupationCounter) load() uint64            { return o.n.Load() }

// Alloc constructs a fresh, zeroed chunk of the given capacity (must already
// be validated as a power of two by the caller) using the supplied
// attachment factory and the package's default pooling allocator. Use
// AllocWith to supply a custom chunkalloc.Allocator (spec §6, wired to
// pkg.WithAllocator).
func Alloc[V any](capacity int, newAttachment Factory[V]) *Chunk[V] {
	return AllocWith(capacity, newAttachment, chunkalloc.Default())
}

// AllocWith is Alloc with an explicit backing allocator.
func AllocWith[V any](capacity int, newAttachment Factory[V], allocator chunkalloc.Allocator) *Chunk[V] {
	region := allocator.Alloc(capacity, 0)
	return &Chunk[V]{
		capacity:  uint64(capacity),
		capMask:   uint64(capacity - 1),
		occuLimit: uint64(float64(capacity) * occupancyFactor),
		allocator: allocator,
		region:    region,
		attach:    newAttachment(capacity),
	}
}

// Destroy releases the chunk's backing memory. Callers must guarantee no
// concurrent reader can still observe this chunk — in practice this is only
// safe to call from an epoch guard's deferred destructor.
func (c *Chunk[V]) Destroy() {
	c.allocator.Release(c.region)
}

// Capacity returns the chunk's fixed slot count.
func (c *Chunk[V]) Capacity() uint64 { return c.capacity }

// Occupation returns the monotonic count of slots ever claimed.
func (c *Chunk[V]) Occupation() uint64 { return c.occupation.load() }

// AddOccupation increments the occupation counter, called by the façade
// once an Insert has been durably published.
func (c *Chunk[V]) AddOccupation(delta uint64) { c.occupation.add(delta) }

// NeedsGrowth reports whether occupation has exceeded the soft limit,
// spec §3 invariant 5 / §4.5 trigger.
func (c *Chunk[V]) NeedsGrowth() bool { return c.occupation.load() > c.occuLimit }

// dump renders every (key, raw value) pair for debugging — used only by
// tests, matching ShisoftResearch/Lightning's dump().
func (c *Chunk[V]) dump() string {
	out := make([]byte, 0, c.capacity*4)
	for i := uint64(0); i < c.capacity; i++ {
		slot := &c.region.Entries[i]
		out = appendUint(out, slot.Key.Load())
		out = append(out, '-')
		out = appendUint(out, slot.Value.Load())
		out = append(out, ' ')
	}
	return string(out)
}

func appendUint(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(dst, tmp[i:]...)
}
