package lightning

// objectmap.go is the word-to-object typed façade over Table, mirroring
// ShisoftResearch/Lightning's ObjectMap impl of the Map<K,V> trait: the
// value word itself carries no information (it only needs to be live,
// never the reserved Sentinel/Empty words), the real payload lives in the
// attachment.
//
// © 2025 Lightning authors. MIT License.

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/shisoft/lightning/internal/chunk"
)

// objectMapPayload is the placeholder value word ObjectMap stores for every
// live entry. It must never equal 0 (Empty) or 1 (Sentinel) once masked, so
// an all-ones word is used, mirroring ShisoftResearch/Lightning's use of
// usize::MAX.
const objectMapPayload = ^uint64(0)

// ObjectMap is a concurrent map from uint64 to an arbitrary value type V.
type ObjectMap[V any] struct {
	table *Table[V]
	group singleflight.Group
}

// NewObjectMap constructs an ObjectMap with the given initial capacity (must
// be a power of two, >= 2).
func NewObjectMap[V any](capacity int, opts ...Option) (*ObjectMap[V], error) {
	t, err := NewTable[V](capacity, chunk.NewObjectAttachment[V], opts...)
	if err != nil {
		return nil, err
	}
	return &ObjectMap[V]{table: t}, nil
}

// Get returns the value stored for key, if any.
func (m *ObjectMap[V]) Get(key uint64) (V, bool) {
	_, attach, ok := m.table.Get(key+keyOffset, true)
	return attach, ok
}

// Contains reports whether key is present.
func (m *ObjectMap[V]) Contains(key uint64) bool {
	return m.table.Contains(key + keyOffset)
}

// Insert stores value for key, reporting whether a prior value existed.
func (m *ObjectMap[V]) Insert(key uint64, value V) (hadPrior bool, err error) {
	_, hadPrior, err = m.table.Insert(key+keyOffset, objectMapPayload, value)
	return hadPrior, err
}

// Remove deletes key if present, returning the value that was stored.
func (m *ObjectMap[V]) Remove(key uint64) (V, bool) {
	_, attach, ok := m.table.Remove(key + keyOffset)
	return attach, ok
}

// ObjectEntry is one (key, value) pair surfaced by Entries.
type ObjectEntry[V any] struct {
	Key   uint64
	Value V
}

// Entries returns a best-effort snapshot of every stored pair.
func (m *ObjectMap[V]) Entries() []ObjectEntry[V] {
	raw := m.table.Entries()
	out := make([]ObjectEntry[V], 0, len(raw))
	for _, e := range raw {
		out = append(out, ObjectEntry[V]{Key: e.Key - keyOffset, Value: e.Attach})
	}
	return out
}

// Stat returns a point-in-time snapshot of table health.
func (m *ObjectMap[V]) Stat() Stats { return m.table.Stat() }

// Close hands the map's backing memory over for deferred release (see
// Table.Close).
func (m *ObjectMap[V]) Close() { m.table.Close() }

// GetOrCompute returns the value stored for key, computing and storing it
// via fn if absent. Concurrent calls for the same key are deduplicated
// through a singleflight.Group, so fn runs at most once per key per
// in-flight population.
func (m *ObjectMap[V]) GetOrCompute(ctx context.Context, key uint64, fn func(context.Context) (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}

	groupKey := strconv.FormatUint(key, 16)
	res, err, _ := m.group.Do(groupKey, func() (any, error) {
		if v, ok := m.Get(key); ok {
			return v, nil
		}
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := m.Insert(key, v); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
