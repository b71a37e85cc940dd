package lightning

import "errors"

var (
	// ErrInvalidCapacity is returned by NewTable/NewWordMap/NewObjectMap when
	// the requested capacity is not a power of two of at least 2.
	ErrInvalidCapacity = errors.New("lightning: capacity must be a power of two >= 2")

	// ErrTableFull is returned by Insert when the entry modifier reports
	// ResTableFull against every chunk the façade tried, even after forcing
	// a resize and exhausting the configured retry budget (spec §4.3,
	// "TableFull"; DESIGN.md Open Question 3).
	ErrTableFull = errors.New("lightning: table full, insertion outpaced migration")

	// ErrInvariantViolation is panicked with when the migrator observes a
	// state spec §3 Invariant 6 ("at most one new_chunk is published per
	// migration") guarantees cannot happen — e.g. the final chunk swap at
	// the end of a migration losing its CAS. This mirrors the reference
	// implementation's panic!() on the same condition (spec §7,
	// "InvariantViolation").
	ErrInvariantViolation = errors.New("lightning: migration invariant violated")
)
