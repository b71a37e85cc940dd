package lightning

// wordmap.go is the word-to-word typed façade over Table, mirroring
// ShisoftResearch/Lightning's WordMap impl of the Map<K,V> trait: keys and
// values are both plain uint64s, so there is no attachment at all.
//
// © 2025 Lightning authors. MIT License.

import "github.com/shisoft/lightning/internal/chunk"

// keyOffset reserves the first NUM_KEY_FIX machine words so that a
// caller-supplied key of 0 never collides with the core's EmptyKey sentinel
// (ShisoftResearch/Lightning's NUM_KEY_FIX = 5).
const keyOffset = 5

// WordMap is a concurrent map from uint64 to uint64.
type WordMap struct {
	table *Table[struct{}]
}

// NewWordMap constructs a WordMap with the given initial capacity (must be
// a power of two, >= 2).
func NewWordMap(capacity int, opts ...Option) (*WordMap, error) {
	t, err := NewTable[struct{}](capacity, chunk.NewNullAttachment[struct{}], opts...)
	if err != nil {
		return nil, err
	}
	return &WordMap{table: t}, nil
}

// Get returns the value stored for key, if any.
func (m *WordMap) Get(key uint64) (uint64, bool) {
	v, _, ok := m.table.Get(key+keyOffset, false)
	return v, ok
}

// Contains reports whether key is present.
func (m *WordMap) Contains(key uint64) bool {
	return m.table.Contains(key + keyOffset)
}

// Insert stores value for key, returning the prior value if one existed.
// The top bit of value is cleared before it is stored, and the values 0 and
// 1 are the core's Empty and Sentinel words: Insert does not reject them,
// and a key stored with either of them reads back as absent.
func (m *WordMap) Insert(key, value uint64) (prior uint64, hadPrior bool, err error) {
	return m.table.Insert(key+keyOffset, value, struct{}{})
}

// Remove deletes key if present, returning the value that was stored.
func (m *WordMap) Remove(key uint64) (uint64, bool) {
	v, _, ok := m.table.Remove(key + keyOffset)
	return v, ok
}

// WordEntry is one (key, value) pair surfaced by Entries.
type WordEntry struct {
	Key, Value uint64
}

// Entries returns a best-effort snapshot of every stored pair.
func (m *WordMap) Entries() []WordEntry {
	raw := m.table.Entries()
	out := make([]WordEntry, 0, len(raw))
	for _, e := range raw {
		out = append(out, WordEntry{Key: e.Key - keyOffset, Value: e.Value})
	}
	return out
}

// Stat returns a point-in-time snapshot of table health.
func (m *WordMap) Stat() Stats { return m.table.Stat() }

// Clone returns an independent copy of the map's current contents.
func (m *WordMap) Clone() *WordMap { return &WordMap{table: m.table.Clone()} }

// Close hands the map's backing memory over for deferred release (see
// Table.Close).
func (m *WordMap) Close() { m.table.Close() }
