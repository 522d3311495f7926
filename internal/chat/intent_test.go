package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/classora/classora-backend/internal/timetable"
)

func intentService(t *testing.T) *Service {
	t.Helper()
	table, err := timetable.Parse(strings.NewReader(`{
		"classes": {
			"8A": {
				"Monday": [
					{"subject": "Math", "start_time": "09:20", "end_time": "10:00"},
					{"subject": "Lunch Break", "start_time": "10:00", "end_time": "10:20"},
					{"subject": "Science", "start_time": "10:20", "end_time": "11:00"}
				]
			}
		}
	}`))
	if err != nil {
		t.Fatalf("parse timetable: %v", err)
	}
	return NewService(nil, NewMemoryHistory(10), nil, table, zerolog.Nop())
}

// monday returns a Monday timestamp at the given time of day.
func monday(clock string) time.Time {
	ct, _ := timetable.ParseClock(clock)
	return time.Date(2026, 8, 24, ct.Hour(), ct.Minute(), 0, 0, time.UTC)
}

func TestExtractClassName(t *testing.T) {
	if got := extractClassName("what is the current period for class 8a?"); got != "8A" {
		t.Fatalf("expected 8A, got %q", got)
	}
	if got := extractClassName("Class 10B full week please"); got != "10B" {
		t.Fatalf("expected 10B, got %q", got)
	}
	if got := extractClassName("what is photosynthesis?"); got != "" {
		t.Fatalf("expected no class, got %q", got)
	}
}

func TestDetectTimetableIntent(t *testing.T) {
	cases := map[string]timetableIntent{
		"current period for class 8A":      intentCurrent,
		"show today's timetable class 8A":  intentToday,
		"today schedule for class 8A":      intentToday,
		"full week for class 8A":           intentWeek,
		"explain photosynthesis":           intentNone,
		"when does the week start, class?": intentNone,
	}
	for prompt, want := range cases {
		if got := detectTimetableIntent(prompt); got != want {
			t.Fatalf("prompt %q: expected intent %d, got %d", prompt, want, got)
		}
	}
}

func TestAnswerTimetableCurrentPeriod(t *testing.T) {
	s := intentService(t)

	reply, ok := s.answerTimetable("current period for class 8A", monday("09:59"))
	if !ok {
		t.Fatalf("expected timetable answer")
	}
	if !strings.Contains(reply, "Math") {
		t.Fatalf("expected Math in reply, got %q", reply)
	}
}

func TestAnswerTimetableMissingClass(t *testing.T) {
	s := intentService(t)

	reply, ok := s.answerTimetable("what is the current period?", monday("09:59"))
	if !ok {
		t.Fatalf("schedule question without a class must still be answered")
	}
	if !strings.Contains(reply, "class 8A") {
		t.Fatalf("expected a hint about naming the class, got %q", reply)
	}
}

func TestAnswerTimetableUnknownClass(t *testing.T) {
	s := intentService(t)

	reply, ok := s.answerTimetable("current period for class 9Z", monday("09:59"))
	if !ok {
		t.Fatalf("expected an answer for an unknown class")
	}
	if !strings.Contains(reply, "9Z") {
		t.Fatalf("expected the unknown class to be named, got %q", reply)
	}
}

func TestAnswerTimetableFallsThroughToLLM(t *testing.T) {
	s := intentService(t)

	if _, ok := s.answerTimetable("explain photosynthesis to class students", monday("09:59")); ok {
		t.Fatalf("non-schedule prompts must fall through to the LLM")
	}
}

func TestAnswerTimetableWeek(t *testing.T) {
	s := intentService(t)

	reply, ok := s.answerTimetable("full week for class 8A", monday("09:59"))
	if !ok {
		t.Fatalf("expected week answer")
	}
	for _, day := range []string{"Sunday", "Monday", "Saturday"} {
		if !strings.Contains(reply, day) {
			t.Fatalf("expected %s in week reply:\n%s", day, reply)
		}
	}
	if !strings.Contains(reply, "Sunday: holiday") {
		t.Fatalf("expected Sunday synthesized as holiday:\n%s", reply)
	}
}
