package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classora/classora-backend/internal/timetable"
)

// TimetableRepository loads the relational timetable. It runs only at
// startup: the resolver serves from the in-memory table afterwards, so no
// query path touches the database.
type TimetableRepository struct {
	pool *pgxpool.Pool
}

// NewTimetableRepository creates a new TimetableRepository.
func NewTimetableRepository(pool *pgxpool.Pool) *TimetableRepository {
	return &TimetableRepository{pool: pool}
}

// LoadTable reads every timetable row and builds the validated in-memory
// table, failing fast on malformed rows exactly like the JSON loader.
func (r *TimetableRepository) LoadTable(ctx context.Context) (*timetable.Table, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT class, day, start_time, end_time, subject, COALESCE(teacher, '')
		 FROM timetable ORDER BY class, day, start_time`)
	if err != nil {
		return nil, fmt.Errorf("query timetable: %w", err)
	}
	defer rows.Close()

	classes := make(map[string]map[time.Weekday]timetable.DaySchedule)
	for rows.Next() {
		var class, dayName, startRaw, endRaw, subject, teacher string
		if err := rows.Scan(&class, &dayName, &startRaw, &endRaw, &subject, &teacher); err != nil {
			return nil, fmt.Errorf("scan timetable row: %w", err)
		}

		day, err := timetable.ParseWeekday(dayName)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", class, err)
		}
		start, err := timetable.ParseClock(startRaw)
		if err != nil {
			return nil, fmt.Errorf("class %s %s: %w", class, day, err)
		}
		end, err := timetable.ParseClock(endRaw)
		if err != nil {
			return nil, fmt.Errorf("class %s %s: %w", class, day, err)
		}

		if classes[class] == nil {
			classes[class] = make(map[time.Weekday]timetable.DaySchedule)
		}
		classes[class][day] = append(classes[class][day], timetable.Period{
			Subject: subject,
			Teacher: teacher,
			Start:   start,
			End:     end,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read timetable rows: %w", err)
	}

	return timetable.New(classes)
}
