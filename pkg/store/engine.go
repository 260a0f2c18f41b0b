// Package store implements the record engine: a fixed-length record file,
// an id index, and the secondary indexes used by the find operations.
package store

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofrs/flock"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/index"
	"github.com/ssargent/filecabinet/pkg/metrics"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/validation"
)

// ErrIDsExhausted is returned when no further id can be assigned
var ErrIDsExhausted = &StoreError{"record ids exhausted"}

// Engine stores records in a single data file
type Engine struct {
	config  EngineConfig
	policy  *validation.Policy
	logger  log.Logger
	metrics *metrics.Metrics

	file    *RecordFile
	lock    *flock.Flock
	ids     *IDIndex
	indexes *index.Manager
	nextID  int32

	mutex  sync.RWMutex
	isOpen bool
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics enables operation metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates a new engine instance. Open must be called before use.
func NewEngine(config EngineConfig, policy *validation.Policy, opts ...Option) (*Engine, error) {
	if config.DataFile == "" {
		return nil, fmt.Errorf("data file path is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("validation policy is required")
	}

	e := &Engine{
		config:  config,
		policy:  policy,
		logger:  log.NewNopLogger(),
		ids:     NewIDIndex(),
		indexes: index.NewManager(),
		nextID:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Policy returns the validation policy the engine enforces
func (e *Engine) Policy() *validation.Policy {
	return e.policy
}

// Open locks the data file and rebuilds every index with one scan
func (e *Engine) Open() (result *OpenResult, err error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.isOpen {
		return &OpenResult{
			Records:  e.file.Count(),
			FileSize: e.file.Size(),
			NextID:   e.nextID,
		}, nil
	}

	start := time.Now()
	defer func() { e.observe(metrics.OpOpen, start, err) }()

	lock := flock.New(e.config.DataFile + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data file: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	file, err := OpenRecordFile(e.config.DataFile, e.config.SyncWrites)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	if err := e.rebuild(file); err != nil {
		level.Error(e.logger).Log("msg", "data file scan failed", "file", e.config.DataFile, "err", err)
		_ = file.Close()
		_ = lock.Unlock()
		return nil, err
	}

	e.file = file
	e.lock = lock
	e.isOpen = true
	e.updateStats()

	result = &OpenResult{
		Records:  file.Count(),
		FileSize: file.Size(),
		NextID:   e.nextID,
		ScanTime: time.Since(start).Nanoseconds(),
	}
	level.Info(e.logger).Log("msg", "data file opened", "file", e.config.DataFile,
		"records", result.Records, "next_id", result.NextID, "validation_rules", e.policy.Name())
	return result, nil
}

func (e *Engine) rebuild(file *RecordFile) error {
	e.ids.Clear()
	e.indexes.Clear()

	var maxID int32
	err := file.Scan(func(offset int64, r *codec.Record) error {
		if e.ids.Put(r.ID, offset) {
			return fmt.Errorf("%w: duplicate id %d at offset %d", codec.ErrCorruptRecord, r.ID, offset)
		}
		e.indexes.Insert(r.Fields, offset)
		if r.ID > maxID {
			maxID = r.ID
		}
		return nil
	})
	if err != nil {
		e.ids.Clear()
		e.indexes.Clear()
		return err
	}

	if maxID == math.MaxInt32 {
		e.nextID = maxID
		level.Warn(e.logger).Log("msg", "no record ids left", "max_id", maxID)
	} else {
		e.nextID = maxID + 1
	}
	return nil
}

// CreateRecord validates f, appends it, and returns the assigned id. A
// *SyncError comes back with the id of the record that was written.
func (e *Engine) CreateRecord(f codec.Fields) (id int32, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpCreate, start, err) }()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.isOpen {
		return 0, ErrClosed
	}
	if err := e.policy.Validate(f); err != nil {
		return 0, err
	}
	return e.createInternal(f)
}

// createInternal appends a validated record without acquiring the mutex
func (e *Engine) createInternal(f codec.Fields) (int32, error) {
	if e.ids.Max() == math.MaxInt32 {
		return 0, ErrIDsExhausted
	}

	r := &codec.Record{ID: e.nextID, Fields: f}
	offset, err := e.file.Append(r)
	var syncErr *SyncError
	if err != nil && !errors.As(err, &syncErr) {
		level.Error(e.logger).Log("msg", "append failed", "id", r.ID, "err", err)
		return 0, err
	}

	// The slot is in the file, so the id is taken even if the fsync failed
	e.ids.Put(r.ID, offset)
	e.indexes.Insert(f, offset)
	if e.nextID < math.MaxInt32 {
		e.nextID++
	}
	e.updateStats()

	if syncErr != nil {
		level.Error(e.logger).Log("msg", "record written but not synced", "id", r.ID, "offset", offset, "err", err)
		return r.ID, err
	}
	level.Debug(e.logger).Log("msg", "record created", "id", r.ID, "offset", offset)
	return r.ID, nil
}

// EditRecord validates f and overwrites record id in place
func (e *Engine) EditRecord(id int32, f codec.Fields) (err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpEdit, start, err) }()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.isOpen {
		return ErrClosed
	}
	offset, ok := e.ids.Get(id)
	if !ok {
		return ErrNotFound
	}
	if err := e.policy.Validate(f); err != nil {
		return err
	}
	return e.editInternal(id, offset, f)
}

// editInternal overwrites a validated record without acquiring the mutex
func (e *Engine) editInternal(id int32, offset int64, f codec.Fields) error {
	old, err := e.file.ReadAt(offset)
	if err != nil {
		return err
	}
	if old.ID != id {
		return fmt.Errorf("%w: offset %d holds id %d, expected %d", codec.ErrCorruptRecord, offset, old.ID, id)
	}

	r := &codec.Record{Status: old.Status, ID: id, Fields: f}
	err = e.file.Overwrite(offset, r)
	var syncErr *SyncError
	if err != nil && !errors.As(err, &syncErr) {
		level.Error(e.logger).Log("msg", "overwrite failed", "id", id, "offset", offset, "err", err)
		return err
	}

	e.indexes.Move(old.Fields, f, offset)

	if syncErr != nil {
		level.Error(e.logger).Log("msg", "record overwritten but not synced", "id", id, "offset", offset, "err", err)
		return err
	}
	level.Debug(e.logger).Log("msg", "record edited", "id", id, "offset", offset)
	return nil
}

// GetRecord returns the record with the given id or ErrNotFound
func (e *Engine) GetRecord(id int32) (r *codec.Record, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpGet, start, err) }()

	e.mutex.RLock()
	defer e.mutex.RUnlock()

	if !e.isOpen {
		return nil, ErrClosed
	}
	offset, ok := e.ids.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e.file.ReadAt(offset)
}

// GetRecords returns every record in file order
func (e *Engine) GetRecords() (records []codec.Record, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpList, start, err) }()

	e.mutex.RLock()
	defer e.mutex.RUnlock()

	if !e.isOpen {
		return nil, ErrClosed
	}
	return e.listInternal()
}

func (e *Engine) listInternal() ([]codec.Record, error) {
	records := make([]codec.Record, 0, e.file.Count())
	err := e.file.Scan(func(_ int64, r *codec.Record) error {
		records = append(records, *r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindByFirstName returns the records whose first name matches, ignoring case
func (e *Engine) FindByFirstName(name string) ([]codec.Record, error) {
	return e.find(e.indexes.FirstName, name)
}

// FindByLastName returns the records whose last name matches, ignoring case
func (e *Engine) FindByLastName(name string) ([]codec.Record, error) {
	return e.find(e.indexes.LastName, name)
}

// FindByDate returns the records born on the given date. Input that is not
// a date in one of codec.DateLayouts matches nothing.
func (e *Engine) FindByDate(date string) ([]codec.Record, error) {
	dob, err := codec.ParseDate(date)
	if err != nil {
		if e.isOpenLocked() {
			level.Debug(e.logger).Log("msg", "unparsable date in find", "input", date)
			return []codec.Record{}, nil
		}
		return nil, ErrClosed
	}
	return e.find(e.indexes.DateOfBirth, index.DateKey(dob))
}

func (e *Engine) find(idx *index.SecondaryIndex, key string) (records []codec.Record, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpFind, start, err) }()

	e.mutex.RLock()
	defer e.mutex.RUnlock()

	if !e.isOpen {
		return nil, ErrClosed
	}

	offsets := idx.Lookup(key)
	level.Debug(e.logger).Log("msg", "index lookup", "index", idx.FieldName(), "key", key, "hits", len(offsets))
	records = make([]codec.Record, 0, len(offsets))
	for _, offset := range offsets {
		r, err := e.file.ReadAt(offset)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, nil
}

// GetStat returns the number of records in the data file
func (e *Engine) GetStat() int {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	if !e.isOpen {
		return 0
	}
	return e.file.Count()
}

// Snapshot returns a copy of every record for export
func (e *Engine) Snapshot() (*snapshot.Snapshot, error) {
	records, err := e.GetRecords()
	if err != nil {
		return nil, err
	}
	return snapshot.New(records), nil
}

// Stats returns engine statistics
func (e *Engine) Stats() *StoreStats {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	stats := &StoreStats{
		NextID:   e.nextID,
		Indexes:  e.indexes.Stats(),
		Policy:   e.policy.Name(),
		DataFile: e.config.DataFile,
	}
	if e.isOpen {
		stats.Records = e.file.Count()
		stats.DataSize = e.file.Size()
	}
	return stats
}

// Close flushes and closes the data file and releases the lock
func (e *Engine) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.isOpen {
		return nil
	}
	e.isOpen = false

	err := e.file.Close()
	if unlockErr := e.lock.Unlock(); unlockErr != nil && err == nil {
		err = fmt.Errorf("unlock data file: %w", unlockErr)
	}

	e.ids.Clear()
	e.indexes.Clear()

	level.Info(e.logger).Log("msg", "data file closed", "file", e.config.DataFile)
	return err
}

func (e *Engine) isOpenLocked() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.isOpen
}

func (e *Engine) observe(operation string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordOperation(operation, err == nil, time.Since(start))
}

func (e *Engine) updateStats() {
	if e.metrics == nil {
		return
	}
	e.metrics.UpdateStoreStats(e.file.Count(), e.file.Size())
}
