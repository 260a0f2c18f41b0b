package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// CheckOffset returns ErrOffset unless off is a non-negative multiple of RecordSize
func CheckOffset(off int64) error {
	if off < 0 || off%RecordSize != 0 {
		return fmt.Errorf("%w: %d is not a multiple of %d", ErrOffset, off, RecordSize)
	}
	return nil
}

// ReadAt reads and decodes the record stored at off
func ReadAt(r io.ReaderAt, off int64) (*Record, error) {
	if err := CheckOffset(off); err != nil {
		return nil, err
	}

	buf := make([]byte, RecordSize)
	if err := readFull(r, buf, off); err != nil {
		return nil, err
	}

	return Decode(buf)
}

// ReadID reads only the id field of the record stored at off
func ReadID(r io.ReaderAt, off int64) (int32, error) {
	if err := CheckOffset(off); err != nil {
		return 0, err
	}

	var buf [4]byte
	if err := readFull(r, buf[:], off+offID); err != nil {
		return 0, err
	}

	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteAt encodes r and writes it at off
func WriteAt(w io.WriterAt, off int64, r *Record) error {
	if err := CheckOffset(off); err != nil {
		return err
	}

	data, err := EncodeRecord(r)
	if err != nil {
		return err
	}

	if _, err := w.WriteAt(data, off); err != nil {
		return &IOError{Op: "write", Offset: off, Err: err}
	}
	return nil
}

func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %d: %w", ErrOffset, off, io.ErrUnexpectedEOF)
	}
	return &IOError{Op: "read", Offset: off, Err: err}
}
