package clock

import (
	"time"

	"github.com/tatame/tatame-backend/pkg/enums"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
	MonthDayLayout  = "01-02"
)

// Clock reads the current instant in the gym-local time zone.
type Clock struct {
	location *time.Location
	now      func() time.Time
}

// New builds a Clock for loc. A nil location falls back to UTC.
func New(loc *time.Location) Clock {
	return NewWithNow(loc, time.Now)
}

// NewWithNow builds a Clock with a custom time source.
func NewWithNow(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return Clock{location: loc, now: now}
}

// Fixed returns a Clock frozen at t, in t's location.
func Fixed(t time.Time) Clock {
	return NewWithNow(t.Location(), func() time.Time { return t })
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().In(c.location)
}

func (c Clock) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Weekday returns today's DayOfWeek.
func (c Clock) Weekday() enums.DayOfWeek {
	return enums.DayOfWeekFromWeekday(c.Now().Weekday())
}

// TimeOfDay returns the current "HH:MM".
func (c Clock) TimeOfDay() string {
	return c.Now().Format(TimeOfDayLayout)
}

// Date returns today's "YYYY-MM-DD".
func (c Clock) Date() string {
	return c.Now().Format(DateLayout)
}

// MonthDay returns today's "MM-DD".
func (c Clock) MonthDay() string {
	return c.Now().Format(MonthDayLayout)
}

// IsTimeOfDay reports whether s is a zero-padded 24h "HH:MM".
func IsTimeOfDay(s string) bool {
	if len(s) != len(TimeOfDayLayout) {
		return false
	}
	_, err := time.Parse(TimeOfDayLayout, s)
	return err == nil
}

// IsDate reports whether s is a "YYYY-MM-DD" calendar date.
func IsDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
