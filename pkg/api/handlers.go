package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log/level"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/store"
)

// maxImportSize caps the body of an import request
var maxImportSize int64 = 32 << 20

// ImportResponse reports the outcome of an import request
type ImportResponse struct {
	BatchID  string                `json:"batch_id"`
	Created  int                   `json:"created"`
	Updated  int                   `json:"updated"`
	Skipped  []store.SkippedRecord `json:"skipped"`
	Rejected []snapshot.Rejected   `json:"rejected"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.records.Stats()
	sendSuccess(w, map[string]interface{}{
		"status":  "healthy",
		"records": stats.Records,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.GetRecords()
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendSuccess(w, newRecordResponses(records))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	record, err := s.records.GetRecord(id)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendSuccess(w, newRecordResponse(*record))
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	id, err := s.records.CreateRecord(fields)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendCreated(w, CreatedResponse{ID: id})
}

func (s *Server) handleEditRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	if err := s.records.EditRecord(id, fields); err != nil {
		sendStoreError(w, err)
		return
	}

	record, err := s.records.GetRecord(id)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendSuccess(w, newRecordResponse(*record))
}

func (s *Server) handleFindRecords(w http.ResponseWriter, r *http.Request) {
	by := strings.ToLower(r.URL.Query().Get("by"))
	value := r.URL.Query().Get("value")
	if value == "" {
		sendError(w, "Query parameter 'value' is required", http.StatusBadRequest)
		return
	}

	var (
		records []codec.Record
		err     error
	)
	switch by {
	case "firstname":
		records, err = s.records.FindByFirstName(value)
	case "lastname":
		records, err = s.records.FindByLastName(value)
	case "dateofbirth":
		records, err = s.records.FindByDate(value)
	default:
		sendError(w, "Query parameter 'by' must be firstname, lastname or dateofbirth", http.StatusBadRequest)
		return
	}
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendSuccess(w, newRecordResponses(records))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := snapshot.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := s.records.Snapshot()
	if err != nil {
		sendStoreError(w, err)
		return
	}

	filename := fmt.Sprintf("records-%s.%s", ksuid.New().String(), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == snapshot.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
		err = snap.WriteCSV(w)
	} else {
		w.Header().Set("Content-Type", "application/xml")
		err = snap.WriteXML(w)
	}
	if err != nil {
		level.Error(s.logger).Log("msg", "export failed", "format", format, "err", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := snapshot.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportSize)
	var snap *snapshot.Snapshot
	if format == snapshot.FormatCSV {
		snap, err = snapshot.ReadCSV(body)
	} else {
		snap, err = snapshot.ReadXML(body)
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		sendError(w, fmt.Sprintf("Import document exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		sendError(w, "Invalid import document: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.records.Restore(snap)
	if err != nil {
		sendStoreError(w, err)
		return
	}

	sendSuccess(w, ImportResponse{
		BatchID:  result.BatchID,
		Created:  result.Created,
		Updated:  result.Updated,
		Skipped:  result.Skipped,
		Rejected: snap.Rejected(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, s.records.Stats())
}

func parseID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		sendError(w, fmt.Sprintf("Invalid record id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return int32(id), true
}

func decodeFields(w http.ResponseWriter, r *http.Request) (codec.Fields, bool) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return codec.Fields{}, false
	}

	fields, err := req.Fields()
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return codec.Fields{}, false
	}
	return fields, true
}
