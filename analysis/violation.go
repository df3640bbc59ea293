// Package analysis implements the streaming well-formedness checker over
// locks, the lock-dependency extractor, the lock graph builder, and the
// deadlock detector.
package analysis

import "fmt"

// RepeatedAcquisition is reported when a thread acquires a lock that is
// currently held by a different thread.
type RepeatedAcquisition struct {
	LockID, ThreadID, OwnerID, Row int64
}

func (v RepeatedAcquisition) Error() string {
	return fmt.Sprintf("row %d: thread T%d tried to acquire lock L%d, which is already held by thread T%d",
		v.Row, v.ThreadID, v.LockID, v.OwnerID)
}

// RepeatedRelease is reported when a thread releases a lock that is
// already free.
type RepeatedRelease struct {
	LockID, ThreadID, Attempted, Previous int64
}

func (v RepeatedRelease) Error() string {
	return fmt.Sprintf("row %d: thread T%d tried to release lock L%d, which was already released at row %d",
		v.Attempted, v.ThreadID, v.LockID, v.Previous)
}

// ReleasedNonOwningLock is reported when a thread releases a lock held by
// a different thread.
type ReleasedNonOwningLock struct {
	LockID, ThreadID, OwnerID, Row int64
}

func (v ReleasedNonOwningLock) Error() string {
	return fmt.Sprintf("row %d: thread T%d tried to release lock L%d, which is owned by thread T%d",
		v.Row, v.ThreadID, v.LockID, v.OwnerID)
}

// ReleasedNonAcquiredLock is reported when a thread releases a lock that
// has never been acquired.
type ReleasedNonAcquiredLock struct {
	LockID, ThreadID, Row int64
}

func (v ReleasedNonAcquiredLock) Error() string {
	return fmt.Sprintf("row %d: thread T%d tried to release lock L%d, which was never acquired",
		v.Row, v.ThreadID, v.LockID)
}
