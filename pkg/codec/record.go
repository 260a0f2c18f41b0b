package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// Sentinel pads string fields and marks the end of the stored text.
	Sentinel = '!'

	// StringFieldWidth is the fixed width of each name field in bytes.
	StringFieldWidth = 60

	// DecimalSize is the width of the encoded salary.
	DecimalSize = 16

	// RecordSize is the number of bytes every record occupies on disk.
	RecordSize = 2*StringFieldWidth + 2*2 + 4*4 + DecimalSize + 1
)

// Byte positions of each field inside a record.
const (
	offStatus    = 0
	offID        = 2
	offFirstName = 6
	offLastName  = offFirstName + StringFieldWidth
	offYear      = offLastName + StringFieldWidth
	offMonth     = offYear + 4
	offDay       = offMonth + 4
	offHeight    = offDay + 4
	offSalary    = offHeight + 2
	offGrade     = offSalary + DecimalSize
)

// Fields holds the user-editable part of a record
type Fields struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Height      int16
	Salary      decimal.Decimal
	Grade       byte
}

// Record is a stored person record
type Record struct {
	Status int16 // Reserved, always zero for records written by this package
	ID     int32
	Fields
}

// Date returns the UTC midnight time for a calendar date
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two times fall on the same calendar date
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Equal reports whether two field sets hold the same values. Salaries are
// compared by value and dates by calendar day.
func (f Fields) Equal(other Fields) bool {
	return f.FirstName == other.FirstName &&
		f.LastName == other.LastName &&
		SameDate(f.DateOfBirth, other.DateOfBirth) &&
		f.Height == other.Height &&
		f.Salary.Equal(other.Salary) &&
		f.Grade == other.Grade
}

// Encode serializes a new record with the given id. The status field is
// written as zero.
func Encode(id int32, f Fields) ([]byte, error) {
	return EncodeRecord(&Record{ID: id, Fields: f})
}

// EncodeRecord serializes a record, including its status field
func EncodeRecord(r *Record) ([]byte, error) {
	buf := make([]byte, RecordSize)

	binary.LittleEndian.PutUint16(buf[offStatus:], uint16(r.Status))
	binary.LittleEndian.PutUint32(buf[offID:], uint32(r.ID))

	if err := putString(buf[offFirstName:offLastName], r.FirstName); err != nil {
		return nil, fmt.Errorf("first name: %w", err)
	}
	if err := putString(buf[offLastName:offYear], r.LastName); err != nil {
		return nil, fmt.Errorf("last name: %w", err)
	}

	year, month, day := r.DateOfBirth.Date()
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("date of birth: %w: year %d", ErrDateOutOfRange, year)
	}
	binary.LittleEndian.PutUint32(buf[offYear:], uint32(int32(year)))
	binary.LittleEndian.PutUint32(buf[offMonth:], uint32(int32(month)))
	binary.LittleEndian.PutUint32(buf[offDay:], uint32(int32(day)))

	binary.LittleEndian.PutUint16(buf[offHeight:], uint16(r.Height))

	if err := putDecimal(buf[offSalary:offGrade], r.Salary); err != nil {
		return nil, fmt.Errorf("salary: %w", err)
	}

	buf[offGrade] = r.Grade

	return buf, nil
}

// Decode deserializes exactly RecordSize bytes into a Record
func Decode(data []byte) (*Record, error) {
	if len(data) != RecordSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrCorruptRecord, len(data), RecordSize)
	}

	r := &Record{}
	r.Status = int16(binary.LittleEndian.Uint16(data[offStatus:]))
	r.ID = int32(binary.LittleEndian.Uint32(data[offID:]))

	var err error
	if r.FirstName, err = getString(data[offFirstName:offLastName]); err != nil {
		return nil, fmt.Errorf("%w: first name: %v", ErrCorruptRecord, err)
	}
	if r.LastName, err = getString(data[offLastName:offYear]); err != nil {
		return nil, fmt.Errorf("%w: last name: %v", ErrCorruptRecord, err)
	}

	year := int32(binary.LittleEndian.Uint32(data[offYear:]))
	month := int32(binary.LittleEndian.Uint32(data[offMonth:]))
	day := int32(binary.LittleEndian.Uint32(data[offDay:]))
	dob, ok := calendarDate(year, month, day)
	if !ok {
		return nil, fmt.Errorf("%w: date of birth %d-%d-%d is not a calendar date", ErrCorruptRecord, year, month, day)
	}
	r.DateOfBirth = dob

	r.Height = int16(binary.LittleEndian.Uint16(data[offHeight:]))

	if r.Salary, err = getDecimal(data[offSalary:offGrade]); err != nil {
		return nil, fmt.Errorf("%w: salary: %v", ErrCorruptRecord, err)
	}

	r.Grade = data[offGrade]

	return r, nil
}

func putString(dst []byte, s string) error {
	if len(s) > len(dst) {
		return fmt.Errorf("%w: %d bytes", ErrFieldTooLong, len(s))
	}
	if strings.IndexByte(s, Sentinel) >= 0 {
		return ErrSentinelInField
	}

	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = Sentinel
	}
	return nil
}

func getString(src []byte) (string, error) {
	end := bytes.IndexByte(src, Sentinel)
	if end < 0 {
		end = len(src)
	}
	for _, b := range src[end:] {
		if b != Sentinel {
			return "", fmt.Errorf("byte %#02x after the fill character", b)
		}
	}
	if !utf8.Valid(src[:end]) {
		return "", fmt.Errorf("invalid UTF-8")
	}
	return string(src[:end]), nil
}

func calendarDate(year, month, day int32) (time.Time, bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := Date(int(year), int(month), int(day))
	if t.Month() != time.Month(month) || t.Day() != int(day) {
		return time.Time{}, false
	}
	return t, true
}
