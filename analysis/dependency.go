package analysis

import "traceanalyzer/internal/types"

// Dependency is a lock-dependency record: thread T acquired lock L at row
// Line while already holding the lock set AcquiredLocks.
type Dependency struct {
	ThreadID      int64
	LockID        int64
	AcquiredLocks types.Set[int64]
	Line          int64
}

// DependencyExtractor records lock dependencies: on each acquire it
// records a lock dependency (suppressing exact duplicates); on each
// release it removes the released lock from every dependency record of
// the releasing thread that currently contains it.
//
// An earlier version of this extractor performed the release-side removal
// on a cloned record, so the mutation never reached the persisted
// dependency list. That is treated here as a bug, not a behavior to
// preserve: this extractor mutates the live records.
type DependencyExtractor struct {
	dependencies []*Dependency
}

// NewDependencyExtractor returns an empty extractor.
func NewDependencyExtractor() *DependencyExtractor {
	return &DependencyExtractor{}
}

// OnAcquire records a new dependency for thread acquiring lock while
// holding the given lock set, unless an identical (thread, lock, held set)
// record already exists.
func (e *DependencyExtractor) OnAcquire(thread, lock int64, held types.Set[int64], row int64) {
	for _, d := range e.dependencies {
		if d.ThreadID == thread && d.LockID == lock && d.AcquiredLocks.Equal(held) {
			return
		}
	}

	e.dependencies = append(e.dependencies, &Dependency{
		ThreadID:      thread,
		LockID:        lock,
		AcquiredLocks: held.Clone(),
		Line:          row,
	})
}

// OnRelease removes lock from every dependency record belonging to thread
// that currently contains it.
func (e *DependencyExtractor) OnRelease(thread, lock int64) {
	for _, d := range e.dependencies {
		if d.ThreadID == thread {
			d.AcquiredLocks.Remove(lock)
		}
	}
}

// Dependencies returns the accumulated dependency records.
func (e *DependencyExtractor) Dependencies() []*Dependency {
	return e.dependencies
}
