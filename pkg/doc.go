// Package lightning implements a lock-free, wait-free-on-the-fast-path
// concurrent hash table keyed by machine words, modeled on the Cliff Click
// non-blocking hash map. Reads, inserts and removes never take a lock;
// growth happens through a cooperative, in-place incremental resize that
// hands a probe off from an "old" chunk to a "new" chunk via a
// prime -> sentinel -> strip protocol (see internal/chunk).
//
// Table is the raw, word-keyed core. WordMap and ObjectMap are typed
// façades that reserve a small key offset so that key 0 never reaches the
// core (see wordmap.go, objectmap.go).
//
// © 2025 Lightning authors. MIT License.
package lightning
