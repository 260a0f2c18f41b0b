package validation

import "errors"

// ErrUnknownPolicy is returned when a policy name is not recognised
var ErrUnknownPolicy = errors.New("unknown validation rules")

// ValidationError reports the first field that violated a policy
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}
