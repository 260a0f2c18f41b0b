package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
)

// CSVHeader is the first line of every CSV export
var CSVHeader = []string{"Id", "First Name", "Last Name", "Date of Birth", "Height", "Salary", "Grade"}

// ErrBadHeader is returned when a CSV document does not start with CSVHeader
var ErrBadHeader = errors.New("csv header does not match")

// WriteCSV writes the header and one comma separated line per record
func (s *Snapshot) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, r := range s.records {
		row := []string{
			strconv.FormatInt(int64(r.ID), 10),
			r.FirstName,
			r.LastName,
			codec.FormatDate(r.DateOfBirth),
			strconv.FormatInt(int64(r.Height), 10),
			r.Salary.String(),
			string(rune(r.Grade)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a CSV export. Rows that fail to parse are skipped and
// reported by Rejected; a missing header is an error.
func ReadCSV(r io.Reader) (*Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty document", ErrBadHeader)
	}
	if err != nil {
		return nil, err
	}
	if !sameHeader(header) {
		return nil, fmt.Errorf("%w: got %q", ErrBadHeader, strings.Join(header, ","))
	}

	s := &Snapshot{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.reject(parseErr.Line, "%v", parseErr.Err)
				continue
			}
			return nil, err
		}

		rec, err := parseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			s.reject(line, "%v", err)
			continue
		}
		s.records = append(s.records, *rec)
	}

	return s, nil
}

func sameHeader(header []string) bool {
	if len(header) != len(CSVHeader) {
		return false
	}
	for i, h := range header {
		// Tolerate a UTF-8 byte order mark before the first column
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), CSVHeader[i]) {
			return false
		}
	}
	return true
}

func parseRow(row []string) (*codec.Record, error) {
	if len(row) != len(CSVHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(CSVHeader), len(row))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", row[0])
	}

	dob, err := codec.ParseDate(row[3])
	if err != nil {
		return nil, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(row[4]), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid height %q", row[4])
	}

	salary, err := decimal.NewFromString(strings.TrimSpace(row[5]))
	if err != nil {
		return nil, fmt.Errorf("invalid salary %q", row[5])
	}

	grade, err := parseGrade(row[6])
	if err != nil {
		return nil, err
	}

	return &codec.Record{
		ID: int32(id),
		Fields: codec.Fields{
			FirstName:   strings.TrimSpace(row[1]),
			LastName:    strings.TrimSpace(row[2]),
			DateOfBirth: dob,
			Height:      int16(height),
			Salary:      salary,
			Grade:       grade,
		},
	}, nil
}
