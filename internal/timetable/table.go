package timetable

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrClassNotFound reports an unknown class identifier.
	ErrClassNotFound = errors.New("class not found")
	// ErrDayNotFound reports a day name that is not a valid weekday.
	// A valid weekday missing from stored data is a holiday, not an error.
	ErrDayNotFound = errors.New("day not found")
)

// Status classifies the result of a current-period lookup.
type Status string

const (
	// StatusHoliday means the weekday has no stored schedule (Sunday, or
	// any day the timetable omits).
	StatusHoliday Status = "holiday"
	// StatusInPeriod means a period contains the queried time.
	StatusInPeriod Status = "in_period"
	// StatusUpcoming means the queried time falls before a period starts.
	StatusUpcoming Status = "upcoming"
	// StatusDayComplete means all periods of the day have ended.
	StatusDayComplete Status = "day_complete"
)

// PeriodStatus is the result of ResolveCurrent. Period is set for
// in_period and upcoming, nil otherwise. IsBreak distinguishes break
// slots from teaching periods without filtering them out.
type PeriodStatus struct {
	Status  Status  `json:"status"`
	Period  *Period `json:"period,omitempty"`
	IsBreak bool    `json:"is_break"`
}

// DayOverview is the resolved schedule of one weekday. Holiday days carry
// an empty (never nil) period list so callers can always range over it.
type DayOverview struct {
	Holiday bool        `json:"holiday"`
	Periods DaySchedule `json:"periods"`
}

// Table holds every class timetable, loaded once at startup and read-only
// afterwards, which makes it safe for unsynchronized concurrent reads.
type Table struct {
	classes map[string]map[time.Weekday]DaySchedule
}

// New validates raw schedule data and builds a Table. It fails fast on the
// first malformed period: zero-length or inverted intervals, periods out
// of start-time order, or overlapping adjacent periods.
func New(classes map[string]map[time.Weekday]DaySchedule) (*Table, error) {
	if len(classes) == 0 {
		return nil, errors.New("timetable has no classes")
	}
	for class, week := range classes {
		for day, sched := range week {
			for i, p := range sched {
				if p.Subject == "" {
					return nil, fmt.Errorf("%s %s period %d: empty subject", class, day, i+1)
				}
				if p.Start >= p.End {
					return nil, fmt.Errorf("%s %s %q: start %s is not before end %s",
						class, day, p.Subject, p.Start, p.End)
				}
				if i == 0 {
					continue
				}
				prev := sched[i-1]
				if p.Start < prev.Start {
					return nil, fmt.Errorf("%s %s %q: periods out of order", class, day, p.Subject)
				}
				if p.Start < prev.End {
					return nil, fmt.Errorf("%s %s %q: overlaps %q", class, day, p.Subject, prev.Subject)
				}
			}
		}
	}
	return &Table{classes: classes}, nil
}

// Classes returns the known class identifiers in sorted order.
func (t *Table) Classes() []string {
	names := make([]string, 0, len(t.classes))
	for class := range t.classes {
		names = append(names, class)
	}
	sort.Strings(names)
	return names
}

// HasClass reports whether the class identifier is known.
func (t *Table) HasClass(classID string) bool {
	_, ok := t.classes[classID]
	return ok
}

// ResolveCurrent determines the period active at the given timestamp for a
// class. With no active period it reports the next upcoming one; with
// nothing left it reports the day as complete. Days without stored
// schedule resolve to holiday. Break slots match like any other period
// and are flagged via IsBreak.
func (t *Table) ResolveCurrent(classID string, now time.Time) (PeriodStatus, error) {
	week, ok := t.classes[classID]
	if !ok {
		return PeriodStatus{}, ErrClassNotFound
	}

	sched := week[now.Weekday()]
	if len(sched) == 0 {
		return PeriodStatus{Status: StatusHoliday}, nil
	}

	tod := ClockOf(now)
	for _, p := range sched {
		if p.Contains(tod) {
			q := p
			return PeriodStatus{Status: StatusInPeriod, Period: &q, IsBreak: q.IsBreak()}, nil
		}
	}
	for _, p := range sched {
		if p.Start > tod {
			q := p
			return PeriodStatus{Status: StatusUpcoming, Period: &q, IsBreak: q.IsBreak()}, nil
		}
	}
	return PeriodStatus{Status: StatusDayComplete}, nil
}

// ResolveDay returns the schedule for one weekday of a class. Weekdays
// absent from stored data (Sunday included) come back as an explicit
// holiday overview, never as a bare empty list.
func (t *Table) ResolveDay(classID string, day time.Weekday) (DayOverview, error) {
	week, ok := t.classes[classID]
	if !ok {
		return DayOverview{}, ErrClassNotFound
	}
	sched := week[day]
	if len(sched) == 0 {
		return DayOverview{Holiday: true, Periods: DaySchedule{}}, nil
	}
	return DayOverview{Periods: sched}, nil
}

// ResolveWeek returns all seven weekdays for a class. Days never stored,
// conventionally Sunday, are synthesized as holidays so the result always
// carries exactly seven entries.
func (t *Table) ResolveWeek(classID string) (map[time.Weekday]DayOverview, error) {
	if !t.HasClass(classID) {
		return nil, ErrClassNotFound
	}
	week := make(map[time.Weekday]DayOverview, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		overview, err := t.ResolveDay(classID, day)
		if err != nil {
			return nil, err
		}
		week[day] = overview
	}
	return week, nil
}

// ParseWeekday converts a day name ("Monday", "MONDAY", "monday") into a
// time.Weekday. Unknown names yield ErrDayNotFound.
func ParseWeekday(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(name, day.String()) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrDayNotFound, name)
}
