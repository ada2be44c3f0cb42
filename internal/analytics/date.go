package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format of a Date.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ErrInvalidDate is returned by strict parsing for input that is neither
// empty nor a valid date.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date with no time-of-day component. The zero value
// means the date is missing.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its calendar parts.
func NewDate(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
// A zero time yields a missing Date.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// DateOfPtr is DateOf for optional timestamps.
func DateOfPtr(t *time.Time) Date {
	if t == nil {
		return Date{}
	}
	return DateOf(*t)
}

// ParseDate accepts "2006-01-02" or an RFC 3339 timestamp. Anything else
// yields a missing Date rather than an error.
func ParseDate(s string) Date {
	d, _ := ParseDateStrict(s)
	return d
}

// ParseDateStrict is ParseDate that reports unparseable input. Blank input
// is a missing Date, not an error.
func ParseDateStrict(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// IsZero reports whether the date is missing.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

// DaysUntil returns the signed number of whole days from d to other.
// Both dates must be present.
func (d Date) DaysUntil(other Date) int {
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalText encodes the date as "2006-01-02"; a missing date encodes as "".
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText is lenient: unparseable input decodes to a missing date.
func (d *Date) UnmarshalText(b []byte) error {
	*d = ParseDate(string(b))
	return nil
}

// StrictDate decodes like Date but rejects unparseable input. Request bodies
// use it so a bad value is reported instead of dropped.
type StrictDate struct {
	Date
}

func (d *StrictDate) UnmarshalText(b []byte) error {
	parsed, err := ParseDateStrict(string(b))
	if err != nil {
		return err
	}
	d.Date = parsed
	return nil
}
