package analysis

import "traceanalyzer/internal/types"

// lockState is the per-lock state tracked by the analyzer: who owns the
// lock, whether it is currently held, and the row of the most recent
// acquire/release.
type lockState struct {
	owner    int64
	hasOwner bool
	locked   bool
	row      int64
}

// Analyzer is the streaming well-formedness checker over locks. It acts
// only on Acquire and Release; every other operation is a no-op for
// well-formedness. Memory is O(unique locks seen), never O(events).
type Analyzer struct {
	locks      map[int64]*lockState
	violations []error
	row        int64
}

// NewAnalyzer returns an empty analyzer, ready to process a fresh trace.
func NewAnalyzer() *Analyzer {
	return &Analyzer{locks: make(map[int64]*lockState)}
}

// Advance moves the trace row counter forward by one and returns the new
// value. The caller advances exactly once per decoded event or skipped
// binary record, before acting on it, so that the row reported in any
// violation matches the physical event position.
func (a *Analyzer) Advance() int64 {
	a.row++
	return a.row
}

// Row returns the current trace row.
func (a *Analyzer) Row() int64 {
	return a.row
}

// Violations returns the violations accumulated so far.
func (a *Analyzer) Violations() []error {
	return a.violations
}

// HeldLocks returns the set of lock ids currently held by threadID. Used
// by the dependency extractor and lock graph builder, which must observe
// this set *before* Acquire updates state for the acquire currently being
// processed.
func (a *Analyzer) HeldLocks(threadID int64) types.Set[int64] {
	held := types.NewSet[int64]()
	for id, l := range a.locks {
		if l.locked && l.hasOwner && l.owner == threadID {
			held.Add(id)
		}
	}
	return held
}

// Acquire processes an Acquire(threadID, lockID) event at row. row must
// already have been advanced by the caller via Advance.
func (a *Analyzer) Acquire(threadID, lockID, row int64) {
	l, exists := a.locks[lockID]
	if exists && l.locked && l.hasOwner && l.owner != threadID {
		a.violations = append(a.violations, RepeatedAcquisition{
			LockID:   lockID,
			ThreadID: threadID,
			OwnerID:  l.owner,
			Row:      row,
		})
	}

	if !exists {
		l = &lockState{}
		a.locks[lockID] = l
	}

	l.owner = threadID
	l.hasOwner = true
	l.locked = true
	l.row = row
}

// Release processes a Release(threadID, lockID) event at row. row must
// already have been advanced by the caller via Advance.
func (a *Analyzer) Release(threadID, lockID, row int64) {
	l, exists := a.locks[lockID]
	if !exists {
		a.violations = append(a.violations, ReleasedNonAcquiredLock{
			LockID:   lockID,
			ThreadID: threadID,
			Row:      row,
		})
		return
	}

	if !l.locked {
		a.violations = append(a.violations, RepeatedRelease{
			LockID:    lockID,
			ThreadID:  threadID,
			Attempted: row,
			Previous:  l.row,
		})
		return
	}

	if l.hasOwner && l.owner != threadID {
		a.violations = append(a.violations, ReleasedNonOwningLock{
			LockID:   lockID,
			ThreadID: threadID,
			OwnerID:  l.owner,
			Row:      row,
		})
		return
	}

	l.owner = 0
	l.hasOwner = false
	l.locked = false
	l.row = row
}
