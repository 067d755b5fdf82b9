package enums

import (
	"testing"
	"time"
)

func TestDayOfWeekRank(t *testing.T) {
	cases := map[DayOfWeek]int{
		DaySunday:    1,
		DayMonday:    2,
		DayTuesday:   3,
		DayWednesday: 4,
		DayThursday:  5,
		DayFriday:    6,
		DaySaturday:  7,
		"HOLIDAY":    0,
	}
	for day, want := range cases {
		if got := day.Rank(); got != want {
			t.Fatalf("%s: expected rank %d got %d", day, want, got)
		}
	}
}

func TestDayOfWeekFromWeekday(t *testing.T) {
	if got := DayOfWeekFromWeekday(time.Sunday); got != DaySunday {
		t.Fatalf("expected SUNDAY got %s", got)
	}
	if got := DayOfWeekFromWeekday(time.Saturday); got != DaySaturday {
		t.Fatalf("expected SATURDAY got %s", got)
	}
	if got := DayOfWeekFromWeekday(time.Monday).Rank(); got != 2 {
		t.Fatalf("expected monday rank 2 got %d", got)
	}
}

func TestParseDayOfWeek(t *testing.T) {
	if _, err := ParseDayOfWeek("monday"); err == nil {
		t.Fatal("expected lower-case day to be rejected")
	}
	day, err := ParseDayOfWeek("FRIDAY")
	if err != nil || day != DayFriday {
		t.Fatalf("unexpected parse result %s %v", day, err)
	}
}

func TestBeltPrecedence(t *testing.T) {
	if BeltBlack.Precedence() >= BeltBrown.Precedence() {
		t.Fatal("black must outrank brown")
	}
	if BeltBlue.Precedence() >= BeltWhite.Precedence() {
		t.Fatal("blue must outrank white")
	}
	if Belt("RAINBOW").IsValid() {
		t.Fatal("unknown belt must be invalid")
	}
	if Belt("RAINBOW").Precedence() <= BeltWhite.Precedence() {
		t.Fatal("unknown belt must sort after white")
	}
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"STUDENT", "INSTRUCTOR", "MANAGER"} {
		if _, err := ParseRole(raw); err != nil {
			t.Fatalf("expected %s to parse: %v", raw, err)
		}
	}
	if _, err := ParseRole("ADMIN"); err == nil {
		t.Fatal("expected ADMIN to be rejected")
	}
}

func TestSubscriptionStatusIsEntitled(t *testing.T) {
	if !SubscriptionStatusActive.IsEntitled() {
		t.Fatal("active must be entitled")
	}
	if SubscriptionStatusCanceled.IsEntitled() {
		t.Fatal("canceled must not be entitled")
	}
	if !SubscriptionStatusPastDue.IsEntitled() {
		t.Fatal("past_due keeps access while payment retries")
	}
}

func TestSubscriptionStatusTerminal(t *testing.T) {
	for _, s := range []SubscriptionStatus{SubscriptionStatusCanceled, SubscriptionStatusIncompleteExpired} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if SubscriptionStatusPaused.IsTerminal() {
		t.Fatal("paused subscriptions can resume")
	}
	if _, err := ParseSubscriptionStatus("paused"); err != nil {
		t.Fatalf("paused should parse: %v", err)
	}
	if _, err := ParseSubscriptionStatus("ACTIVE"); err == nil {
		t.Fatal("status values are lower case")
	}
}
