package timetable

import "strings"

// Break periods sit in the schedule like any other period but are excluded
// from teaching-period queries and flagged distinctly in status responses.
var breakSubjects = map[string]struct{}{
	"Lunch Break": {},
	"Short Break": {},
}

// IsBreakSubject reports whether a subject denotes a break rather than a class.
func IsBreakSubject(subject string) bool {
	_, ok := breakSubjects[subject]
	return ok
}

// Period is one scheduled interval of a class day. The interval is
// closed-open: a timestamp equal to Start belongs to the period, a
// timestamp equal to End does not.
type Period struct {
	Subject string    `json:"subject"`
	Teacher string    `json:"teacher,omitempty"`
	Start   ClockTime `json:"start_time"`
	End     ClockTime `json:"end_time"`
}

// IsBreak reports whether this period is a break slot.
func (p Period) IsBreak() bool {
	return IsBreakSubject(p.Subject)
}

// Contains reports whether t falls inside the period's [start, end) interval.
func (p Period) Contains(t ClockTime) bool {
	return p.Start <= t && t < p.End
}

// DaySchedule is the ordered period list of one class on one weekday.
// Periods are ascending by start time and non-overlapping; the table
// builder validates this at load time.
type DaySchedule []Period

// TeachingPeriods returns the schedule with break slots filtered out.
func (d DaySchedule) TeachingPeriods() DaySchedule {
	teaching := make(DaySchedule, 0, len(d))
	for _, p := range d {
		if !p.IsBreak() {
			teaching = append(teaching, p)
		}
	}
	return teaching
}

// FirstTeachingPeriod returns the first non-break period of the day,
// or nil if the day has none.
func (d DaySchedule) FirstTeachingPeriod() *Period {
	teaching := d.TeachingPeriods()
	if len(teaching) == 0 {
		return nil
	}
	p := teaching[0]
	return &p
}

// LastTeachingPeriod returns the last non-break period of the day,
// or nil if the day has none.
func (d DaySchedule) LastTeachingPeriod() *Period {
	teaching := d.TeachingPeriods()
	if len(teaching) == 0 {
		return nil
	}
	p := teaching[len(teaching)-1]
	return &p
}

// PeriodBySubject finds the first teaching period matching the subject
// name case-insensitively, or nil when no period teaches it.
func (d DaySchedule) PeriodBySubject(subject string) *Period {
	for _, p := range d.TeachingPeriods() {
		if strings.EqualFold(p.Subject, subject) {
			q := p
			return &q
		}
	}
	return nil
}
