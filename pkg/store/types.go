package store

import (
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/index"
)

// EngineConfig holds configuration for the record engine
type EngineConfig struct {
	DataFile   string // Path to the record file
	SyncWrites bool   // Fsync after every write
}

// OpenResult describes the scan performed when the engine was opened
type OpenResult struct {
	Records  int   // Records found in the file
	FileSize int64 // File length in bytes
	NextID   int32 // Id the next created record receives
	ScanTime int64 // Scan duration in nanoseconds
}

// SkippedRecord is an imported record that failed validation
type SkippedRecord struct {
	ID     int32  `json:"id"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// RestoreResult summarizes a restore batch
type RestoreResult struct {
	BatchID string          `json:"batch_id"`
	Created int             `json:"created"`
	Updated int             `json:"updated"`
	Skipped []SkippedRecord `json:"skipped"`
}

// StoreStats holds engine statistics
type StoreStats struct {
	Records  int         `json:"records"`
	DataSize int64       `json:"data_size"`
	NextID   int32       `json:"next_id"`
	Indexes  index.Stats `json:"indexes"`
	Policy   string      `json:"validation_rules"`
	DataFile string      `json:"data_file"`
}

// Errors
var (
	ErrNotFound = &StoreError{"record not found"}
	ErrClosed   = &StoreError{"store is not open"}
	ErrLocked   = &StoreError{"data file is locked by another process"}

	// ErrCorruptRecord is returned when the data file cannot be scanned
	ErrCorruptRecord = codec.ErrCorruptRecord
)

// StoreError represents a record store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// SyncError reports a write that reached the data file but could not be
// flushed to stable storage. The record is in the file and in the indexes.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return "sync data file: " + e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
