package chunk

import "unsafe"

// Attachment is the side-array hook the core calls strictly after winning a
// slot (Set), strictly after tombstoning/sentinelizing it (Erase), and only
// once it has already observed a live value for that slot's key (Get). It is
// the typed payload companion to the raw (key, value) word pair.
//
// ShisoftResearch/Lightning carves the attachment region out of the same
// raw byte allocation as the entry array (heap_size_of / init(cap,
// heap_base, heap_size)) because Rust's Attachment<V> may store arbitrary,
// possibly non-Copy types that still need manual placement. In Go, a V
// stored outside the garbage collector's view (e.g. inside a manually
// managed byte buffer carved from internal/chunkalloc) would be unsound the
// moment V contains a pointer — the GC could collect or move referents it
// never saw rooted. Attachments therefore own a plain `[]V` slice here;
// HeapSize remains for metrics/accounting parity with the allocator
// interface, not for actual placement.
type Attachment[V any] interface {
	// Get returns the payload stored at index for key. Index/key pairs are
	// only queried by the core after observing a live value there.
	Get(index int, key uint64) V
	// Set stores val at index for key. Called strictly after the core wins
	// the slot's value-word CAS.
	Set(index int, key uint64, val V)
	// Erase clears whatever was stored at index. Called strictly after the
	// core tombstones or sentinelizes the slot.
	Erase(index int, key uint64)
	// HeapSize reports the approximate number of bytes index-many entries
	// of this attachment occupy, for metrics/accounting only.
	HeapSize(capacity int) int
}

// Factory constructs a fresh Attachment[V] sized for capacity slots. Chunk
// allocation takes a Factory so that WordMap and ObjectMap can each supply
// the attachment flavour appropriate to their value type.
type Factory[V any] func(capacity int) Attachment[V]

// NullAttachment implements Attachment[V] as a set of no-ops, for the
// word-valued table where there is no payload beyond the value word itself.
type NullAttachment[V any] struct{}

func NewNullAttachment[V any](int) Attachment[V] { return NullAttachment[V]{} }

func (NullAttachment[V]) Get(int, uint64) V {
	var zero V
	return zero
}
func (NullAttachment[V]) Set(int, uint64, V)    {}
func (NullAttachment[V]) Erase(int, uint64)     {}
func (NullAttachment[V]) HeapSize(int) int      { return 0 }

// ObjectAttachment stores one V per slot in a plain Go slice, parallel to
// the entry array. Reads/writes are unsynchronized because the core only
// calls Set/Get/Erase under the happens-before relationship established by
// the corresponding value-word CAS (see internal/chunk/modify.go).
type ObjectAttachment[V any] struct {
	values []V
}

// NewObjectAttachment is a Factory[V] for typed payload storage.
func NewObjectAttachment[V any](capacity int) Attachment[V] {
	return &ObjectAttachment[V]{values: make([]V, capacity)}
}

func (a *ObjectAttachment[V]) Get(index int, _ uint64) V { return a.values[index] }
func (a *ObjectAttachment[V]) Set(index int, _ uint64, val V) { a.values[index] = val }
func (a *ObjectAttachment[V]) Erase(index int, _ uint64) {
	var zero V
	a.values[index] = zero
}
func (a *ObjectAttachment[V]) HeapSize(capacity int) int {
	var zero V
	return capacity * int(unsafe.Sizeof(zero))
}
