package timetable

import (
	"errors"
	"testing"
	"time"
)

func mustClock(t *testing.T, s string) ClockTime {
	t.Helper()
	ct, err := ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return ct
}

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := New(map[string]map[time.Weekday]DaySchedule{
		"8A": {
			time.Monday: {
				{Subject: "Math", Teacher: "Ms. Rao", Start: mustClock(t, "09:20"), End: mustClock(t, "10:00")},
				{Subject: "Lunch Break", Start: mustClock(t, "10:00"), End: mustClock(t, "10:20")},
				{Subject: "Science", Teacher: "Mr. Iyer", Start: mustClock(t, "10:20"), End: mustClock(t, "11:00")},
			},
			time.Tuesday: {
				{Subject: "English", Start: mustClock(t, "09:20"), End: mustClock(t, "10:00")},
			},
		},
	})
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

// at returns a timestamp on the given weekday with the given time of day.
// 2026-08-24 is a Monday.
func at(t *testing.T, day time.Weekday, clock string) time.Time {
	t.Helper()
	base := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC) // Sunday
	ct := mustClock(t, clock)
	return base.AddDate(0, 0, int(day)).Add(time.Duration(ct) * time.Minute)
}

func TestResolveCurrentInsidePeriod(t *testing.T) {
	table := testTable(t)

	status, err := table.ResolveCurrent("8A", at(t, time.Monday, "09:59"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if status.Status != StatusInPeriod {
		t.Fatalf("expected in_period, got %s", status.Status)
	}
	if status.Period == nil || status.Period.Subject != "Math" {
		t.Fatalf("expected Math, got %+v", status.Period)
	}
	if status.IsBreak {
		t.Fatalf("Math must not be flagged as break")
	}
}

func TestResolveCurrentBreakIsEligibleAndFlagged(t *testing.T) {
	table := testTable(t)

	status, err := table.ResolveCurrent("8A", at(t, time.Monday, "10:05"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if status.Status != StatusInPeriod {
		t.Fatalf("expected in_period, got %s", status.Status)
	}
	if status.Period == nil || status.Period.Subject != "Lunch Break" {
		t.Fatalf("expected Lunch Break, got %+v", status.Period)
	}
	if !status.IsBreak {
		t.Fatalf("Lunch Break must carry is_break")
	}
}

func TestResolveCurrentBoundaryBelongsToStartingPeriod(t *testing.T) {
	table := testTable(t)

	// 10:00 is Math's end and Lunch Break's start. Closed-open intervals
	// assign it to the starting period, never the ending one.
	status, err := table.ResolveCurrent("8A", at(t, time.Monday, "10:00"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if status.Period == nil || status.Period.Subject != "Lunch Break" {
		t.Fatalf("expected boundary to open Lunch Break, got %+v", status.Period)
	}
}

func TestResolveCurrentUpcoming(t *testing.T) {
	table := testTable(t)

	status, err := table.ResolveCurrent("8A", at(t, time.Monday, "09:00"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if status.Status != StatusUpcoming {
		t.Fatalf("expected upcoming, got %s", status.Status)
	}
	if status.Period == nil || status.Period.Subject != "Math" {
		t.Fatalf("expected upcoming Math, got %+v", status.Period)
	}
}

func TestResolveCurrentDayComplete(t *testing.T) {
	table := testTable(t)

	status, err := table.ResolveCurrent("8A", at(t, time.Monday, "11:30"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if status.Status != StatusDayComplete {
		t.Fatalf("expected day_complete, got %s", status.Status)
	}
	if status.Period != nil {
		t.Fatalf("day_complete must not carry a period")
	}
}

func TestResolveCurrentSundayIsHoliday(t *testing.T) {
	table := testTable(t)

	status, err := table.ResolveCurrent("8A", at(t, time.Sunday, "10:00"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if status.Status != StatusHoliday {
		t.Fatalf("expected holiday on Sunday, got %s", status.Status)
	}
}

func TestResolveCurrentUnknownClass(t *testing.T) {
	table := testTable(t)

	_, err := table.ResolveCurrent("9Z", at(t, time.Monday, "10:00"))
	if !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}
}

func TestResolveDay(t *testing.T) {
	table := testTable(t)

	day, err := table.ResolveDay("8A", time.Monday)
	if err != nil {
		t.Fatalf("resolve day: %v", err)
	}
	if day.Holiday || len(day.Periods) != 3 {
		t.Fatalf("expected 3 Monday periods, got %+v", day)
	}

	sunday, err := table.ResolveDay("8A", time.Sunday)
	if err != nil {
		t.Fatalf("resolve sunday: %v", err)
	}
	if !sunday.Holiday {
		t.Fatalf("expected explicit holiday for Sunday")
	}
	if sunday.Periods == nil {
		t.Fatalf("holiday periods must be empty, not nil")
	}

	if _, err := table.ResolveDay("9Z", time.Monday); !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}
}

func TestResolveWeekHasSevenDays(t *testing.T) {
	table := testTable(t)

	week, err := table.ResolveWeek("8A")
	if err != nil {
		t.Fatalf("resolve week: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 weekday entries, got %d", len(week))
	}
	if !week[time.Sunday].Holiday {
		t.Fatalf("Sunday must be synthesized as a holiday")
	}
	if week[time.Monday].Holiday || len(week[time.Monday].Periods) != 3 {
		t.Fatalf("Monday schedule missing from week view")
	}
	if !week[time.Wednesday].Holiday {
		t.Fatalf("days absent from storage must come back as holidays")
	}
}

func TestClasses(t *testing.T) {
	table := testTable(t)

	classes := table.Classes()
	if len(classes) != 1 || classes[0] != "8A" {
		t.Fatalf("expected [8A], got %v", classes)
	}
}

func TestNewRejectsOverlap(t *testing.T) {
	_, err := New(map[string]map[time.Weekday]DaySchedule{
		"8A": {
			time.Monday: {
				{Subject: "Math", Start: mustClock(t, "09:20"), End: mustClock(t, "10:10")},
				{Subject: "Science", Start: mustClock(t, "10:00"), End: mustClock(t, "10:40")},
			},
		},
	})
	if err == nil {
		t.Fatalf("expected overlap to be rejected at load time")
	}
}

func TestNewRejectsInvertedInterval(t *testing.T) {
	_, err := New(map[string]map[time.Weekday]DaySchedule{
		"8A": {
			time.Monday: {
				{Subject: "Math", Start: mustClock(t, "10:00"), End: mustClock(t, "09:20")},
			},
		},
	})
	if err == nil {
		t.Fatalf("expected inverted interval to be rejected")
	}
}

func TestNewRejectsOutOfOrderPeriods(t *testing.T) {
	_, err := New(map[string]map[time.Weekday]DaySchedule{
		"8A": {
			time.Monday: {
				{Subject: "Science", Start: mustClock(t, "10:20"), End: mustClock(t, "11:00")},
				{Subject: "Math", Start: mustClock(t, "09:20"), End: mustClock(t, "10:00")},
			},
		},
	})
	if err == nil {
		t.Fatalf("expected out-of-order periods to be rejected")
	}
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("MONDAY")
	if err != nil {
		t.Fatalf("parse weekday: %v", err)
	}
	if day != time.Monday {
		t.Fatalf("expected Monday, got %s", day)
	}

	if _, err := ParseWeekday("Funday"); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("expected ErrDayNotFound, got %v", err)
	}
}

func TestTeachingPeriodHelpers(t *testing.T) {
	table := testTable(t)

	day, err := table.ResolveDay("8A", time.Monday)
	if err != nil {
		t.Fatalf("resolve day: %v", err)
	}

	teaching := day.Periods.TeachingPeriods()
	if len(teaching) != 2 {
		t.Fatalf("expected 2 teaching periods, got %d", len(teaching))
	}
	if first := day.Periods.FirstTeachingPeriod(); first == nil || first.Subject != "Math" {
		t.Fatalf("expected first teaching period Math, got %+v", first)
	}
	if last := day.Periods.LastTeachingPeriod(); last == nil || last.Subject != "Science" {
		t.Fatalf("expected last teaching period Science, got %+v", last)
	}
	if p := day.Periods.PeriodBySubject("science"); p == nil || p.Teacher != "Mr. Iyer" {
		t.Fatalf("expected case-insensitive subject lookup, got %+v", p)
	}
	if p := day.Periods.PeriodBySubject("Lunch Break"); p != nil {
		t.Fatalf("breaks must not match subject lookup")
	}
}
