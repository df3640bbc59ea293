package pipeline

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceanalyzer/analysis"
	"traceanalyzer/trace"
)

func writeTrace(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunValidTraceHasNoViolations(t *testing.T) {
	path := writeTrace(t, "valid_trace.std",
		"T6|acq(L1)|1\nT6|rel(L1)|2\nT7|acq(L2)|3\nT7|rel(L2)|4\nT6|w(V1)|5\nT7|r(V1)|6\n")

	result := Run(Config{Path: path})

	assert.Empty(t, result.Violations)
}

func TestRunRepeatedAcquisition(t *testing.T) {
	path := writeTrace(t, "repeated_lock_acquisition.std",
		"T6|acq(L9)|1\nT6|acq(L1)|2\nT6|rel(L1)|3\nT7|acq(L2)|4\nT7|rel(L2)|5\nT6|w(V1)|6\nT7|acq(L9)|7\n")

	result := Run(Config{Path: path})

	require.Len(t, result.Violations, 1)
	assert.Equal(t, analysis.RepeatedAcquisition{LockID: 9, ThreadID: 7, OwnerID: 6, Row: 7}, result.Violations[0])
}

func TestRunRepeatedRelease(t *testing.T) {
	path := writeTrace(t, "repeated_lock_release.std",
		"T6|acq(L1)|1\nT6|rel(L1)|2\nT7|acq(L2)|3\nT7|rel(L2)|4\nT6|w(V1)|5\nT6|acq(L9)|6\nT6|rel(L9)|7\nT6|rel(L9)|8\n")

	result := Run(Config{Path: path})

	require.Len(t, result.Violations, 1)
	assert.Equal(t, analysis.RepeatedRelease{LockID: 9, ThreadID: 6, Attempted: 8, Previous: 7}, result.Violations[0])
}

func TestRunReleasedNonOwningLock(t *testing.T) {
	path := writeTrace(t, "release_non_owning_lock.std",
		"T6|acq(L1)|1\nT6|rel(L1)|2\nT7|acq(L2)|3\nT7|rel(L2)|4\nT6|w(V1)|5\nT6|acq(L9)|6\nT7|rel(L9)|7\n")

	result := Run(Config{Path: path})

	require.Len(t, result.Violations, 1)
	assert.Equal(t, analysis.ReleasedNonOwningLock{LockID: 9, ThreadID: 7, OwnerID: 6, Row: 7}, result.Violations[0])
}

func TestRunReleasedNonAcquiredLock(t *testing.T) {
	path := writeTrace(t, "release_non_acquired_lock.std",
		"T6|acq(L1)|1\nT6|rel(L1)|2\nT7|acq(L2)|3\nT7|rel(L2)|4\nT6|w(V1)|5\nT7|rel(L9)|6\n")

	result := Run(Config{Path: path})

	require.Len(t, result.Violations, 1)
	assert.Equal(t, analysis.ReleasedNonAcquiredLock{LockID: 9, ThreadID: 7, Row: 6}, result.Violations[0])
}

func TestRunNonASCIICharacter(t *testing.T) {
	path := writeTrace(t, "unsupported_character.std", "*")

	result := Run(Config{Path: path})

	require.Len(t, result.Violations, 1)
	decErr, ok := result.Violations[0].(*trace.DecodeError)
	require.True(t, ok)
	assert.Equal(t, trace.NonASCIICharacter, decErr.Kind)
}

func TestRunUnsupportedExtensionHalts(t *testing.T) {
	path := writeTrace(t, "trace.bin", "anything")

	result := Run(Config{Path: path})

	require.Len(t, result.Violations, 1)
	decErr, ok := result.Violations[0].(*trace.DecodeError)
	require.True(t, ok)
	assert.Equal(t, trace.UnsupportedExtension, decErr.Kind)
}

// TestRunTextualAndBinaryEncodingsProduceSameViolations checks that
// re-encoding the same trace into the binary format and analyzing it
// yields an identical multiset of violations.
func TestRunTextualAndBinaryEncodingsProduceSameViolations(t *testing.T) {
	textPath := writeTrace(t, "same.std",
		"T6|acq(L9)|1\nT6|acq(L1)|2\nT6|rel(L1)|3\nT7|acq(L2)|4\nT7|rel(L2)|5\nT6|w(V1)|6\nT7|acq(L9)|7\n")

	binPath := filepath.Join(t.TempDir(), "same.data")
	writeBinaryEquivalent(t, binPath, []packedEvent{
		{thread: 6, op: 0, operand: 9}, // Acquire
		{thread: 6, op: 0, operand: 1},
		{thread: 6, op: 1, operand: 1}, // Release
		{thread: 7, op: 0, operand: 2},
		{thread: 7, op: 1, operand: 2},
		{thread: 6, op: 3, operand: 1}, // Write
		{thread: 7, op: 0, operand: 9},
	})

	textResult := Run(Config{Path: textPath})
	binResult := Run(Config{Path: binPath})

	require.Len(t, textResult.Violations, 1)
	require.Len(t, binResult.Violations, 1)
	assert.Equal(t, textResult.Violations[0], binResult.Violations[0])
}

type packedEvent struct {
	thread  int64
	op      uint64
	operand int64
}

const (
	threadShift    = 0
	operationShift = 10
	operandShift   = 14
)

func writeBinaryEquivalent(t *testing.T, path string, events []packedEvent) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var hdr [18]byte
	binary.BigEndian.PutUint16(hdr[0:2], 2)
	binary.BigEndian.PutUint32(hdr[2:6], 10)
	binary.BigEndian.PutUint32(hdr[6:10], 2)
	binary.BigEndian.PutUint64(hdr[10:18], uint64(len(events)))
	_, err = f.Write(hdr[:])
	require.NoError(t, err)

	for _, e := range events {
		v := (uint64(e.thread) << threadShift) | (e.op << operationShift) | (uint64(e.operand) << operandShift)
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], v)
		_, err := f.Write(buf[:])
		require.NoError(t, err)
	}
}

func TestRunWithGraphAndLockDependencies(t *testing.T) {
	path := writeTrace(t, "cycle.std",
		"T1|acq(L1)|1\nT1|acq(L2)|2\nT1|rel(L2)|3\nT1|rel(L1)|4\n"+
			"T2|acq(L2)|5\nT2|acq(L1)|6\nT2|rel(L1)|7\nT2|rel(L2)|8\n")

	result := Run(Config{Path: path, Graph: true, LockDependencies: true})

	assert.Empty(t, result.Violations)
	assert.NotEmpty(t, result.LockEdges)
	assert.Equal(t, 1, result.CycleCount)
}
