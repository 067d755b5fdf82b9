package enums

import (
	"fmt"
	"time"
)

// DayOfWeek is the weekday a class is scheduled on.
type DayOfWeek string

const (
	DaySunday    DayOfWeek = "SUNDAY"
	DayMonday    DayOfWeek = "MONDAY"
	DayTuesday   DayOfWeek = "TUESDAY"
	DayWednesday DayOfWeek = "WEDNESDAY"
	DayThursday  DayOfWeek = "THURSDAY"
	DayFriday    DayOfWeek = "FRIDAY"
	DaySaturday  DayOfWeek = "SATURDAY"
)

// validDaysOfWeek is ordered; a day's rank is its index plus one.
var validDaysOfWeek = []DayOfWeek{
	DaySunday,
	DayMonday,
	DayTuesday,
	DayWednesday,
	DayThursday,
	DayFriday,
	DaySaturday,
}

// String implements fmt.Stringer.
func (d DayOfWeek) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DayOfWeek.
func (d DayOfWeek) IsValid() bool {
	return d.Rank() > 0
}

// Rank orders the week starting at SUNDAY=1 through SATURDAY=7. Unknown
// values rank 0.
func (d DayOfWeek) Rank() int {
	for i, candidate := range validDaysOfWeek {
		if candidate == d {
			return i + 1
		}
	}
	return 0
}

// DayOfWeekFromWeekday maps the time package weekday to a DayOfWeek.
func DayOfWeekFromWeekday(w time.Weekday) DayOfWeek {
	return validDaysOfWeek[int(w)%len(validDaysOfWeek)]
}

// ParseDayOfWeek converts raw input into a DayOfWeek.
func ParseDayOfWeek(value string) (DayOfWeek, error) {
	for _, candidate := range validDaysOfWeek {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid day of week %q", value)
}
