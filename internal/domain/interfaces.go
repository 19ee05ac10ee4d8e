package domain

import "time"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// app/gantt implements TaskBoard; infra/sqlite implements TaskStore.

// TaskBoard is the live, regenerable task list.
type TaskBoard interface {
	// Tasks returns a snapshot of the current list.
	Tasks() []GanttTask

	// Len returns the current list length.
	Len() int

	// Count returns the configured batch size.
	Count() int

	// Batch returns the latest batch.
	Batch() Batch

	// Regenerate clears the list in place, refills it and returns the
	// batch it produced.
	Regenerate() Batch
}

// TaskStore mirrors batches for filtered queries and aggregates.
type TaskStore interface {
	ReplaceBatch(b Batch) error
	Tasks(f TaskFilter) ([]GanttTask, error)
	Summary() (Summary, error)
	Ping() error
}

// Clock supplies the current time. time.Now satisfies it.
type Clock func() time.Time

// Rand is the uniform source the generator draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64

	// IntN returns a value in [0, n).
	IntN(n int) int
}
