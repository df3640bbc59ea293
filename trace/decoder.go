package trace

import (
	"io"
	"path/filepath"
)

// Decoder turns a byte stream into a sequence of events.
//
// Next returns the next decoded event. When a low-level record was
// consumed but produced no usable event (the binary decoder's unknown
// operation ids), Next returns skipped=true and a zero Event; the
// caller must still advance its row counter for that record and call Next
// again. Next returns io.EOF once the stream is exhausted cleanly, or a
// *DecodeError for any fatal, unrecoverable failure.
type Decoder interface {
	Next() (ev Event, skipped bool, err error)
}

// Open selects a decoder for path by its file extension: ".std" is the
// textual format, ".data" is the binary format, anything else is an
// UnsupportedExtension error. The returned io.Closer must be closed by
// the caller once decoding is done.
func Open(path string, normalize bool) (Decoder, io.Closer, error) {
	ext := filepath.Ext(path)

	switch ext {
	case ".std":
		f, err := openFile(path)
		if err != nil {
			return nil, nil, err
		}
		dec, derr := NewTextDecoder(f, normalize)
		if derr != nil {
			f.Close()
			return nil, nil, derr
		}
		return dec, f, nil
	case ".data":
		f, err := openFile(path)
		if err != nil {
			return nil, nil, err
		}
		dec, derr := NewBinaryDecoder(f)
		if derr != nil {
			f.Close()
			return nil, nil, derr
		}
		return dec, f, nil
	default:
		return nil, nil, &DecodeError{Kind: UnsupportedExtension}
	}
}
