// Package snapshot holds a point-in-time copy of the record set and converts
// it to and from the CSV and XML exchange formats.
package snapshot

import (
	"fmt"
	"strings"

	"github.com/ssargent/filecabinet/pkg/codec"
)

// Exchange formats
const (
	FormatCSV = "csv"
	FormatXML = "xml"
)

// Snapshot is an immutable copy of records
type Snapshot struct {
	records  []codec.Record
	rejected []Rejected
}

// Rejected describes an imported entry that could not be parsed. Line is the
// 1-based CSV line or XML record position.
type Rejected struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// New creates a snapshot holding a copy of records
func New(records []codec.Record) *Snapshot {
	cp := make([]codec.Record, len(records))
	copy(cp, records)
	return &Snapshot{records: cp}
}

// Records returns a copy of the records
func (s *Snapshot) Records() []codec.Record {
	cp := make([]codec.Record, len(s.records))
	copy(cp, s.records)
	return cp
}

// Len returns the number of records
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Rejected returns the entries skipped while reading the snapshot
func (s *Snapshot) Rejected() []Rejected {
	cp := make([]Rejected, len(s.rejected))
	copy(cp, s.rejected)
	return cp
}

// ParseFormat normalizes an exchange format name
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatCSV, FormatXML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected csv or xml)", format)
	}
}

func (s *Snapshot) reject(line int, format string, args ...interface{}) {
	s.rejected = append(s.rejected, Rejected{Line: line, Reason: fmt.Sprintf(format, args...)})
}

func parseGrade(s string) (byte, error) {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, fmt.Errorf("grade %q is not a single character", s)
	}
	return s[0], nil
}
