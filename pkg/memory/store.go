package memory

// Store persists the memory snapshot. Every implementation reads and writes
// the snapshot wholesale: there are no partial or merge writes.
//
// Stores assume a single concurrent writer. Two processes recording runs
// against the same backing file race at the document level and the last write
// wins; concurrent orchestration is an explicit non-goal of this design.
type Store interface {
	// Load returns the current snapshot. It never fails: missing, empty or
	// unparsable state is replaced by all-zero defaults, which are persisted
	// best-effort before being returned.
	Load() *Snapshot

	// Save overwrites the persisted snapshot. Failures propagate: a lost
	// write loses the learning signal and is fatal to the run.
	Save(s *Snapshot) error

	// Reset deletes the persisted snapshot. No-op when none exists.
	Reset() error

	// Close releases any underlying resources.
	Close() error
}
