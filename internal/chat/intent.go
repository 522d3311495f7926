package chat

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/classora/classora-backend/internal/timetable"
)

// The timetable shortcut is a deliberately bounded heuristic layer in
// front of the LLM: it only fires on an explicit "class <name>" mention
// combined with one of three known phrasings, and everything else falls
// through to the completion API. It never guesses.

var classPattern = regexp.MustCompile(`class\s+(\d+[a-zA-Z]*)`)

type timetableIntent int

const (
	intentNone timetableIntent = iota
	intentCurrent
	intentToday
	intentWeek
)

func extractClassName(prompt string) string {
	match := classPattern.FindStringSubmatch(strings.ToLower(prompt))
	if match == nil {
		return ""
	}
	return strings.ToUpper(match[1])
}

func detectTimetableIntent(prompt string) timetableIntent {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "current period"):
		return intentCurrent
	case strings.Contains(p, "today's timetable"), strings.Contains(p, "today timetable"),
		strings.Contains(p, "today's schedule"), strings.Contains(p, "today schedule"):
		return intentToday
	case strings.Contains(p, "full week"), strings.Contains(p, "week timetable"),
		strings.Contains(p, "week schedule"):
		return intentWeek
	default:
		return intentNone
	}
}

// answerTimetable resolves a schedule question directly from the timetable.
// The second result is false when the prompt is not a schedule question and
// should go to the LLM instead.
func (s *Service) answerTimetable(prompt string, now time.Time) (string, bool) {
	intent := detectTimetableIntent(prompt)
	if intent == intentNone {
		return "", false
	}

	class := extractClassName(prompt)
	if class == "" {
		return "Please mention the class like 'class 8A' in your prompt.", true
	}
	if !s.schedule.HasClass(class) {
		return fmt.Sprintf("Class %s is not in the timetable.", class), true
	}

	switch intent {
	case intentCurrent:
		status, err := s.schedule.ResolveCurrent(class, now)
		if err != nil {
			return "", false
		}
		return formatPeriodStatus(class, status), true
	case intentToday:
		day, err := s.schedule.ResolveDay(class, now.Weekday())
		if err != nil {
			return "", false
		}
		return formatDay(class, now.Weekday(), day), true
	default:
		week, err := s.schedule.ResolveWeek(class)
		if err != nil {
			return "", false
		}
		return formatWeek(class, week), true
	}
}

func formatPeriodStatus(class string, status timetable.PeriodStatus) string {
	switch status.Status {
	case timetable.StatusHoliday:
		return fmt.Sprintf("Class %s has no school today, it's a holiday.", class)
	case timetable.StatusInPeriod:
		if status.IsBreak {
			return fmt.Sprintf("Class %s is on %s until %s.", class, status.Period.Subject, status.Period.End)
		}
		return fmt.Sprintf("Class %s is in %s until %s.", class, status.Period.Subject, status.Period.End)
	case timetable.StatusUpcoming:
		return fmt.Sprintf("No period is running for class %s right now. Next up: %s at %s.",
			class, status.Period.Subject, status.Period.Start)
	default:
		return fmt.Sprintf("Class %s has finished all periods for today.", class)
	}
}

func formatDay(class string, day time.Weekday, overview timetable.DayOverview) string {
	if overview.Holiday {
		return fmt.Sprintf("Class %s has no schedule on %s.", class, day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s schedule for class %s:\n", day, class)
	for _, p := range overview.Periods {
		fmt.Fprintf(&b, "  %s-%s %s\n", p.Start, p.End, p.Subject)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatWeek(class string, week map[time.Weekday]timetable.DayOverview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week schedule for class %s:\n", class)
	for day := time.Sunday; day <= time.Saturday; day++ {
		overview := week[day]
		if overview.Holiday {
			fmt.Fprintf(&b, "%s: holiday\n", day)
			continue
		}
		fmt.Fprintf(&b, "%s:\n", day)
		for _, p := range overview.Periods {
			fmt.Fprintf(&b, "  %s-%s %s\n", p.Start, p.End, p.Subject)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
