package timetable

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// fileDocument is the canonical on-disk timetable shape:
//
//	{"classes": {"8A": {"Monday": [{"subject": "Math", "teacher": "…",
//	                                "start_time": "09:20", "end_time": "10:00"}]}}}
type fileDocument struct {
	Classes map[string]map[string]DaySchedule `json:"classes"`
}

// LoadFile reads and validates a timetable JSON file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timetable: %w", err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("timetable %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes the canonical timetable document and builds a validated
// Table. Unknown weekday names and malformed periods fail immediately.
func Parse(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc fileDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	classes := make(map[string]map[time.Weekday]DaySchedule, len(doc.Classes))
	for class, days := range doc.Classes {
		week := make(map[time.Weekday]DaySchedule, len(days))
		for name, sched := range days {
			day, err := ParseWeekday(name)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", class, err)
			}
			if _, dup := week[day]; dup {
				return nil, fmt.Errorf("class %s: duplicate day %s", class, day)
			}
			week[day] = sched
		}
		classes[class] = week
	}

	return New(classes)
}
