//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FuzzDecodeEncode checks that any buffer Decode accepts re-encodes to the same bytes
func FuzzDecodeEncode(f *testing.F) {
	seeds := []Fields{
		{FirstName: "Ann", LastName: "Lee", DateOfBirth: Date(1990, 5, 2), Height: 170, Salary: decimal.RequireFromString("1000.00"), Grade: 'A'},
		{FirstName: strings.Repeat("a", StringFieldWidth), LastName: "Żółć", DateOfBirth: Date(2000, 2, 29), Height: -1, Salary: decimal.RequireFromString("-12.345"), Grade: '7'},
		{DateOfBirth: Date(1, 1, 1), Salary: decimal.RequireFromString("79228162514264337593543950335")},
		{FirstName: "Bob", LastName: "Ray", DateOfBirth: Date(9999, 12, 31), Salary: decimal.RequireFromString("0.0000000000000000000000000001")},
	}
	for i, fields := range seeds {
		buf, err := Encode(int32(i+1), fields)
		if err != nil {
			f.Fatalf("seed %d: %v", i, err)
		}
		f.Add(buf)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		record, err := Decode(data)
		if err != nil {
			return
		}

		again, err := EncodeRecord(record)
		if err != nil {
			t.Fatalf("Encode failed for decoded record %+v: %v", record, err)
		}

		if !bytes.Equal(again, data) {
			t.Errorf("Round trip changed bytes:\n got %x\nwant %x", again, data)
		}
	})
}

// FuzzEncodeDecode checks that encodable fields survive a round trip
func FuzzEncodeDecode(f *testing.F) {
	f.Add(int32(1), "Ann", "Lee", 1990, 5, 2, int16(170), "1000.00", byte('A'))
	f.Add(int32(-5), "", "Żółć 🎯", 2000, 2, 29, int16(-1), "-0.5", byte(0))

	f.Fuzz(func(t *testing.T, id int32, first, last string, year, month, day int, height int16, salary string, grade byte) {
		amount, err := decimal.NewFromString(salary)
		if err != nil || year < 1 || year > 9999 || !utf8.ValidString(first) || !utf8.ValidString(last) {
			t.Skip("Input is not a storable record")
		}
		fields := Fields{
			FirstName:   first,
			LastName:    last,
			DateOfBirth: Date(year, month%12+1, day%28+1),
			Height:      height,
			Salary:      amount,
			Grade:       grade,
		}

		buf, err := Encode(id, fields)
		if err != nil {
			// Names with the fill byte, wide names and huge salaries are rejected
			return
		}

		record, err := Decode(buf)
		if err != nil {
			t.Fatalf("Decode failed for encoded fields %+v: %v", fields, err)
		}
		if record.ID != id {
			t.Errorf("ID mismatch: got %d, want %d", record.ID, id)
		}
		if record.FirstName != first || record.LastName != last {
			t.Errorf("Name mismatch: got %q %q, want %q %q", record.FirstName, record.LastName, first, last)
		}
	})
}
