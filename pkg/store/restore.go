package store

import (
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/filecabinet/pkg/metrics"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/validation"
)

// Restore merges an imported snapshot into the store. Records that fail
// validation are skipped; a record whose id exists is overwritten in place,
// any other record is created with a newly assigned id. Ids are matched
// against the records stored before the batch started. The first I/O error
// aborts the batch and is returned with the partial result.
func (e *Engine) Restore(s *snapshot.Snapshot) (result *RestoreResult, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpRestore, start, err) }()

	result = &RestoreResult{
		BatchID: ksuid.New().String(),
		Skipped: []SkippedRecord{},
	}
	logger := log.With(e.logger, "batch", result.BatchID)

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.isOpen {
		return nil, ErrClosed
	}

	// Edit or create is decided against the ids present before the batch,
	// so a renumbered record is never overwritten by a later entry.
	existing := make(map[int32]int64, e.ids.Size())
	e.ids.Ascend(func(id int32, offset int64) bool {
		existing[id] = offset
		return true
	})

	for _, rejected := range s.Rejected() {
		level.Warn(logger).Log("msg", "import entry rejected", "line", rejected.Line, "reason", rejected.Reason)
	}

	for _, r := range s.Records() {
		if err := e.policy.Validate(r.Fields); err != nil {
			skipped := SkippedRecord{ID: r.ID, Reason: err.Error()}
			var vErr *validation.ValidationError
			if errors.As(err, &vErr) {
				skipped.Field = vErr.Field
				skipped.Reason = vErr.Message
			}
			result.Skipped = append(result.Skipped, skipped)
			level.Warn(logger).Log("msg", "import record skipped", "id", r.ID, "field", skipped.Field, "reason", skipped.Reason)
			continue
		}

		if offset, ok := existing[r.ID]; ok {
			err := e.editInternal(r.ID, offset, r.Fields)
			if err == nil || isSyncError(err) {
				result.Updated++
			}
			if err != nil {
				return result, err
			}
			continue
		}

		id, err := e.createInternal(r.Fields)
		if err == nil || isSyncError(err) {
			result.Created++
		}
		if err != nil {
			return result, err
		}
		if id != r.ID {
			level.Debug(logger).Log("msg", "import record renumbered", "from", r.ID, "to", id)
		}
	}

	if e.metrics != nil {
		e.metrics.RecordRestoreSkipped(len(result.Skipped))
	}
	level.Info(logger).Log("msg", "import finished", "created", result.Created,
		"updated", result.Updated, "skipped", len(result.Skipped), "rejected", len(s.Rejected()))
	return result, nil
}

func isSyncError(err error) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr)
}
