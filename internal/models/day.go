package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DayLayout is the canonical text form of a ledger date, as stored in rec_date.
const DayLayout = "2006-01-02"

// Day is a calendar date without time of day. The zero value is "no date".
type Day struct {
	t time.Time
}

// NewDay builds a Day from its calendar components.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates t to its calendar date in t's own location.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay parses "YYYY-MM-DD".
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day{t: t}, nil
}

func (d Day) IsZero() bool {
	return d.t.IsZero()
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return Day{t: d.t.AddDate(0, 0, 1)}
}

// AddDays shifts the date by n days (n may be negative).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

func (d Day) Before(o Day) bool {
	return d.t.Before(o.t)
}

func (d Day) After(o Day) bool {
	return d.t.After(o.t)
}

func (d Day) Equal(o Day) bool {
	return d.t.Equal(o.t)
}

// At returns the instant hour:minute on this day in loc.
func (d Day) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), hour, minute, 0, 0, loc)
}

// DaysBetween counts days in the inclusive range [from, to]; zero if to is before from.
func DaysBetween(from, to Day) int {
	if to.Before(from) {
		return 0
	}
	return int(to.t.Sub(from.t).Hours()/24) + 1
}

// Value stores the date as "YYYY-MM-DD" text.
func (d Day) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan reads a rec_date column. Postgres may hand back time.Time for DATE
// casts; sqlite returns text or bytes.
func (d *Day) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Day{}
		return nil
	case time.Time:
		*d = DayOf(v)
		return nil
	case string:
		parsed, err := ParseDay(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDay(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("unsupported scan type for Day: %T", value)
	}
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
