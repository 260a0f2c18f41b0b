package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/ssargent/filecabinet/pkg/codec"
)

// RecordFile is the fixed-length record file. Every record lives at a
// multiple of codec.RecordSize and is addressed by that offset.
type RecordFile struct {
	file       *os.File
	path       string
	size       int64 // Current file length
	syncWrites bool
	syncFile   func() error
}

// OpenRecordFile opens or creates the data file at path
func OpenRecordFile(path string, syncWrites bool) (*RecordFile, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "open data file")
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "stat data file")
	}

	return &RecordFile{
		file:       file,
		path:       path,
		size:       stat.Size(),
		syncWrites: syncWrites,
		syncFile:   file.Sync,
	}, nil
}

// Size returns the file length in bytes
func (f *RecordFile) Size() int64 {
	return f.size
}

// Count returns the number of record slots in the file
func (f *RecordFile) Count() int {
	return int(f.size / codec.RecordSize)
}

// Append writes r after the last record and returns its offset. When the
// record is written but the fsync fails, the offset is returned together
// with a *SyncError.
func (f *RecordFile) Append(r *codec.Record) (int64, error) {
	offset := f.size

	if err := codec.WriteAt(f.file, offset, r); err != nil {
		// Drop a partially written slot
		if truncErr := f.file.Truncate(offset); truncErr != nil {
			return 0, errors.Wrapf(err, "append failed and truncate failed (%v)", truncErr)
		}
		return 0, err
	}
	f.size += codec.RecordSize

	return offset, f.sync()
}

// Overwrite replaces the record stored at offset. A *SyncError means the
// new bytes are in place but not yet on stable storage.
func (f *RecordFile) Overwrite(offset int64, r *codec.Record) error {
	if offset >= f.size {
		return fmt.Errorf("%w: %d is past the end of the file", codec.ErrOffset, offset)
	}
	if err := codec.WriteAt(f.file, offset, r); err != nil {
		return err
	}
	return f.sync()
}

// ReadAt reads the record stored at offset
func (f *RecordFile) ReadAt(offset int64) (*codec.Record, error) {
	return codec.ReadAt(f.file, offset)
}

// Scan decodes every record in file order. A length that is not a multiple
// of the record size is reported as corruption before anything is read.
func (f *RecordFile) Scan(fn func(offset int64, r *codec.Record) error) error {
	if f.size%codec.RecordSize != 0 {
		return fmt.Errorf("%w: file length %d is not a multiple of %d", codec.ErrCorruptRecord, f.size, codec.RecordSize)
	}

	reader := bufio.NewReaderSize(io.NewSectionReader(f.file, 0, f.size), 64*1024)
	buf := make([]byte, codec.RecordSize)

	for offset := int64(0); offset < f.size; offset += codec.RecordSize {
		if _, err := io.ReadFull(reader, buf); err != nil {
			return &codec.IOError{Op: "scan", Offset: offset, Err: err}
		}

		r, err := codec.Decode(buf)
		if err != nil {
			return fmt.Errorf("record at offset %d: %w", offset, err)
		}

		if err := fn(offset, r); err != nil {
			return err
		}
	}
	return nil
}

// Sync flushes the file to stable storage
func (f *RecordFile) Sync() error {
	return errors.Wrapf(f.syncFile(), "sync %s", f.path)
}

// Close syncs and closes the file
func (f *RecordFile) Close() error {
	if err := f.Sync(); err != nil {
		_ = f.file.Close()
		return err
	}
	return errors.Wrap(f.file.Close(), "close data file")
}

func (f *RecordFile) sync() error {
	if !f.syncWrites {
		return nil
	}
	if err := f.syncFile(); err != nil {
		return &SyncError{Err: err}
	}
	return nil
}
