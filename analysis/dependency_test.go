package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceanalyzer/internal/types"
)

func lockSet(ids ...int64) types.Set[int64] {
	s := types.NewSet[int64]()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func TestDependencyExtractorRecordsNewDependency(t *testing.T) {
	e := NewDependencyExtractor()

	e.OnAcquire(6, 9, lockSet(1, 2), 3)

	require.Len(t, e.Dependencies(), 1)
	d := e.Dependencies()[0]
	assert.EqualValues(t, 6, d.ThreadID)
	assert.EqualValues(t, 9, d.LockID)
	assert.True(t, d.AcquiredLocks.Equal(lockSet(1, 2)))
	assert.EqualValues(t, 3, d.Line)
}

// TestDependencyExtractorSuppressesExactDuplicates checks that no two
// dependency records are equal under (thread_id, lock_id, acquired_locks).
func TestDependencyExtractorSuppressesExactDuplicates(t *testing.T) {
	e := NewDependencyExtractor()

	e.OnAcquire(6, 9, lockSet(1), 3)
	e.OnAcquire(6, 9, lockSet(1), 5) // identical (T, L, held): suppressed
	e.OnAcquire(6, 9, lockSet(1, 2), 7) // different held set: new record

	require.Len(t, e.Dependencies(), 2)
}

func TestDependencyExtractorReleaseRemovesLockFromOwningThreadRecords(t *testing.T) {
	e := NewDependencyExtractor()

	e.OnAcquire(6, 9, lockSet(1, 2), 1)
	e.OnAcquire(6, 10, lockSet(1, 2), 2)
	e.OnAcquire(7, 11, lockSet(1), 3)

	e.OnRelease(6, 1)

	for _, d := range e.Dependencies() {
		if d.ThreadID == 6 {
			assert.False(t, d.AcquiredLocks.Contains(1))
		}
	}
	// other threads' records are untouched
	for _, d := range e.Dependencies() {
		if d.ThreadID == 7 {
			assert.True(t, d.AcquiredLocks.Contains(1))
		}
	}
}
