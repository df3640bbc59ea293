package trace

import (
	"encoding/binary"
	"io"
)

// Bit layout of a packed binary event record, from the least-significant
// bit upward. One high bit is left unused.
const (
	threadBits, threadShift     = 10, 0
	operationBits, operationShift = 4, 10
	operandBits, operandShift   = 34, 14
	locationBits, locationShift = 15, 48
)

func lowBits(v uint64, bits uint) uint64 {
	return v & ((uint64(1) << bits) - 1)
}

// Header is the informational preamble of a binary trace: counts of
// threads, locks, variables, and events. Nothing downstream enforces these
// against the events that actually follow.
type Header struct {
	ThreadCount   int32
	LockCount     int32
	VariableCount int32
	EventCount    int64
}

// BinaryDecoder decodes the packed binary trace format. It reads
// exactly the header, then exactly 8 bytes per event, never buffering more
// than one record at a time.
type BinaryDecoder struct {
	r      io.Reader
	Header Header
	done   bool
}

// NewBinaryDecoder reads and parses the fixed-size header from r.
func NewBinaryDecoder(r io.Reader) (*BinaryDecoder, *DecodeError) {
	var buf [18]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, &DecodeError{Kind: IOError, Cause: err}
	}

	threadCount := lowBits(uint64(binary.BigEndian.Uint16(buf[0:2])), 10)
	lockCount := lowBits(uint64(binary.BigEndian.Uint32(buf[2:6])), 31)
	variableCount := lowBits(uint64(binary.BigEndian.Uint32(buf[6:10])), 31)
	eventCount := lowBits(binary.BigEndian.Uint64(buf[10:18]), 63)

	return &BinaryDecoder{
		r: r,
		Header: Header{
			ThreadCount:   int32(threadCount),
			LockCount:     int32(lockCount),
			VariableCount: int32(variableCount),
			EventCount:    int64(eventCount),
		},
	}, nil
}

// operationByID maps the binary operation id to an Operation. The iota
// ordering of Operation (trace/event.go) already matches this table
// exactly: 0=Acquire .. 9=Branch.
func operationByID(id uint64) (Operation, bool) {
	if id > uint64(Branch) {
		return 0, false
	}
	return Operation(id), true
}

// Next implements Decoder. A short read exactly at a record boundary, or
// mid-record, both terminate decoding cleanly — callers cannot tell the
// two apart and don't need to.
func (d *BinaryDecoder) Next() (Event, bool, error) {
	if d.done {
		return Event{}, false, io.EOF
	}

	var buf [8]byte
	n, err := io.ReadFull(d.r, buf[:])
	if err != nil {
		d.done = true
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return Event{}, false, io.EOF
		}
		return Event{}, false, &DecodeError{Kind: IOError, Cause: err}
	}

	v := binary.BigEndian.Uint64(buf[:])

	threadID := int64(lowBits(v>>threadShift, threadBits))
	opID := lowBits(v>>operationShift, operationBits)
	operandRaw := int64(lowBits(v>>operandShift, operandBits))
	location := int64(lowBits(v>>locationShift, locationBits))

	op, ok := operationByID(opID)
	if !ok {
		return Event{}, true, nil
	}

	ev := Event{
		ThreadID:  threadID,
		Operation: op,
		Operand:   NewOperand(op, operandRaw),
		Location:  location,
	}

	return ev, false, nil
}
