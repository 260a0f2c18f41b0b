// Package codec provides the fixed-width binary record layout used by the
// file cabinet storage engine.
//
// Every record occupies exactly RecordSize (157) bytes. There is no file
// header, so the record in slot n starts at byte n*RecordSize and any record
// can be read or overwritten in place with a single positional I/O call.
//
// # Record Format
//
//	[Status(2)][ID(4)][FirstName(60)][LastName(60)][Year(4)][Month(4)][Day(4)][Height(2)][Salary(16)][Grade(1)]
//
// Fields:
//   - Status: reserved 16-bit flag, written as zero (little-endian)
//   - ID: 32-bit signed record id (little-endian)
//   - FirstName, LastName: UTF-8 text padded with the '!' fill byte
//   - Year, Month, Day: 32-bit signed date of birth components (little-endian)
//   - Height: 16-bit signed height (little-endian)
//   - Salary: 16-byte fixed-point decimal, see below
//   - Grade: a single byte
//
// # String Fields
//
// A string field holds up to StringFieldWidth bytes of UTF-8 text. The unused
// tail is filled with the Sentinel byte and the first Sentinel marks the
// logical end of the string, so stored strings can never contain '!'. Every
// byte after the first Sentinel must also be the Sentinel.
//
// A field without any Sentinel is a string that uses the full width. Decode
// accepts it when the bytes are valid UTF-8 and reports ErrCorruptRecord
// otherwise.
//
// # Salary Encoding
//
// The salary is stored in the same 128-bit layout as a .NET System.Decimal:
//
//	[Lo(4)][Mid(4)][Hi(4)][Flags(4)]
//
// Lo, Mid and Hi form a 96-bit unsigned coefficient. Bits 16-23 of Flags hold
// the scale (number of fractional digits, 0-28) and bit 31 holds the sign.
// Every other flag bit must be zero, and a zero coefficient must not carry
// the sign bit.
//
// # Usage
//
//	buf, err := codec.Encode(1, codec.Fields{
//	    FirstName:   "Ann",
//	    LastName:    "Lee",
//	    DateOfBirth: codec.Date(1990, 5, 2),
//	    Height:      170,
//	    Salary:      decimal.RequireFromString("1000.00"),
//	    Grade:       'A',
//	})
//	if err != nil {
//	    return err
//	}
//
//	record, err := codec.Decode(buf)
//
// ReadAt, WriteAt and ReadID perform the same conversions directly against an
// io.ReaderAt or io.WriterAt such as *os.File.
//
// # Error Handling
//
// Encode rejects values the layout cannot represent (ErrFieldTooLong,
// ErrSentinelInField, ErrDateOutOfRange, ErrSalaryOverflow). Decode reports
// malformed bytes as ErrCorruptRecord wrapped with the offending field.
// Offsets that are negative, unaligned, or past the end of the data are
// ErrOffset; any other I/O failure is returned as *IOError.
package codec
