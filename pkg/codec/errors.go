package codec

import "fmt"

// Errors
var (
	ErrCorruptRecord   = &CodecError{"corrupt record"}
	ErrOffset          = &CodecError{"invalid record offset"}
	ErrFieldTooLong    = &CodecError{fmt.Sprintf("string field exceeds %d bytes", StringFieldWidth)}
	ErrSentinelInField = &CodecError{fmt.Sprintf("string field contains the %q fill character", Sentinel)}
	ErrDateOutOfRange  = &CodecError{"date out of range"}
	ErrSalaryOverflow  = &CodecError{"salary does not fit in 96 bits"}
)

// CodecError represents a record layout error
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}

// IOError wraps a failure of the underlying file
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
