package codec

import (
	"fmt"
	"strings"
	"time"
)

// DisplayDateLayout renders dates in exports and listings, e.g. 1985-Jan-3
const DisplayDateLayout = "2006-Jan-2"

// InputDateLayout is the layout dates are typed in interactively
const InputDateLayout = "01/02/2006"

// DateLayouts are the layouts ParseDate accepts, tried in order
var DateLayouts = []string{
	"2006-01-02",
	InputDateLayout,
	DisplayDateLayout,
	"2006/01/02",
	"1/2/2006",
}

// FormatDate renders a date of birth with DisplayDateLayout
func FormatDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// ParseDate parses a date in any of DateLayouts and returns it at UTC midnight
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
