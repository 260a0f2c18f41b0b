package shell

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/index"
	"github.com/ssargent/filecabinet/pkg/store"
)

// RecordView is the JSON form of a record
type RecordView struct {
	ID          int32           `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	DateOfBirth string          `json:"date_of_birth"`
	Height      int16           `json:"height"`
	Salary      decimal.Decimal `json:"salary"`
	Grade       string          `json:"grade"`
}

// NewRecordView converts a record to its JSON form
func NewRecordView(r codec.Record) RecordView {
	return RecordView{
		ID:          r.ID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: index.DateKey(r.DateOfBirth),
		Height:      r.Height,
		Salary:      r.Salary,
		Grade:       string(rune(r.Grade)),
	}
}

// FormatRecord renders a record as a single listing line, e.g.
// "#1) Ann, Lee, 1990-May-2, Salary: 1000.000, Height: 170, Grade: A"
func FormatRecord(r codec.Record) string {
	return formatRecord(r)
}

func formatRecord(r codec.Record) string {
	return fmt.Sprintf("#%d) %s, %s, %s, Salary: %s, Height: %d, Grade: %c",
		r.ID, r.FirstName, r.LastName, codec.FormatDate(r.DateOfBirth),
		r.Salary.StringFixed(3), r.Height, r.Grade)
}

// printRecords displays records as listing lines or a JSON array
func (s *Shell) printRecords(records []codec.Record) error {
	if s.format == config.OutputJSON {
		views := make([]RecordView, 0, len(records))
		for _, r := range records {
			views = append(views, NewRecordView(r))
		}
		return s.printJSON(views)
	}

	for _, r := range records {
		fmt.Fprintln(s.out, formatRecord(r))
	}
	return nil
}

// printStats displays engine statistics in table or JSON format
func (s *Shell) printStats(stats *store.StoreStats) error {
	if s.format == config.OutputJSON {
		return s.printJSON(stats)
	}

	fmt.Fprintf(s.out, "%d record(s).\n", stats.Records)

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Data file:\t%s\n", stats.DataFile)
	fmt.Fprintf(w, "Data size:\t%d bytes\n", stats.DataSize)
	fmt.Fprintf(w, "Next id:\t%d\n", stats.NextID)
	fmt.Fprintf(w, "Validation rules:\t%s\n", stats.Policy)
	fmt.Fprintf(w, "First names:\t%d\n", stats.Indexes.FirstNames)
	fmt.Fprintf(w, "Last names:\t%d\n", stats.Indexes.LastNames)
	fmt.Fprintf(w, "Dates of birth:\t%d\n", stats.Indexes.DatesOfBirth)
	return nil
}

func (s *Shell) printJSON(v interface{}) error {
	encoder := json.NewEncoder(s.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
