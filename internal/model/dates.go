package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the plain calendar date format used by date inputs.
const DateLayout = "2006-01-02"

// displayLayout is how dates are rendered in the list view.
const displayLayout = "Jan 2, 2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	DateLayout,
}

// ParseDate parses an ISO-8601 date or date-time as sent by the API.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayDate renders a stored date for humans. Unparseable text is
// returned unchanged.
func DisplayDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(displayLayout)
}

// DateInputValue returns the YYYY-MM-DD part of a stored date, as expected
// by edit inputs.
func DateInputValue(s string) string {
	before, _, _ := strings.Cut(s, "T")
	return before
}

// ValidInputDate reports whether s is a YYYY-MM-DD date.
func ValidInputDate(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}

// ErrInvalidDate is returned for date input that is set but not YYYY-MM-DD.
var ErrInvalidDate = errors.New("dates must be YYYY-MM-DD")

// CheckInputDate returns an error wrapping ErrInvalidDate when s is
// non-blank and not a YYYY-MM-DD date. field names the input in the message.
func CheckInputDate(field, s string) error {
	if strings.TrimSpace(s) == "" || ValidInputDate(s) {
		return nil
	}
	return fmt.Errorf("%w: %s %q", ErrInvalidDate, field, s)
}

// RemainingDays returns ceil((lastDate - now) / 1 day). The result is
// negative for overdue tasks. ok is false when lastDate cannot be parsed.
func RemainingDays(lastDate string, now time.Time) (days int, ok bool) {
	due, ok := ParseDate(lastDate)
	if !ok {
		return 0, false
	}
	d := due.Sub(now).Hours() / 24
	return int(math.Ceil(d)), true
}
