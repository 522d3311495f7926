package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classora/classora-backend/internal/response"
	"github.com/classora/classora-backend/internal/timetable"
)

// ScheduleHandler serves timetable lookups. The table is read-only after
// startup, so handlers share it without locking.
type ScheduleHandler struct {
	table *timetable.Table
	now   func() time.Time
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(table *timetable.Table) *ScheduleHandler {
	return &ScheduleHandler{table: table, now: time.Now}
}

// GetAllClasses godoc
// GET /get_all_classes
// Lists the known class identifiers.
func (h *ScheduleHandler) GetAllClasses(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"classes": h.table.Classes()})
}

// GetDaySchedule godoc
// GET /get_day_schedule?class=8A[&day=Monday]
// Returns one day's schedule for a class; day defaults to today.
func (h *ScheduleHandler) GetDaySchedule(c *gin.Context) {
	class := c.Query("class")
	if class == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingField)
		return
	}

	day := h.now().Weekday()
	if name := c.Query("day"); name != "" {
		parsed, err := timetable.ParseWeekday(name)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrDayNotFound)
			return
		}
		day = parsed
	}

	overview, err := h.table.ResolveDay(class, day)
	if err != nil {
		h.failResolve(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"class":    class,
		"day":      day.String(),
		"holiday":  overview.Holiday,
		"schedule": overview.Periods,
	})
}

// GetCurrentPeriod godoc
// GET /get_current_period?class=8A
// Reports the active period, the next one, or the day/holiday status.
func (h *ScheduleHandler) GetCurrentPeriod(c *gin.Context) {
	class := c.Query("class")
	if class == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingField)
		return
	}

	now := h.now()
	status, err := h.table.ResolveCurrent(class, now)
	if err != nil {
		h.failResolve(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"class":    class,
		"day":      now.Weekday().String(),
		"time":     timetable.ClockOf(now).String(),
		"status":   status.Status,
		"period":   status.Period,
		"is_break": status.IsBreak,
	})
}

// GetFullWeek godoc
// GET /get_full_week?class=8A
// Returns all seven weekdays, Sunday synthesized as a holiday.
func (h *ScheduleHandler) GetFullWeek(c *gin.Context) {
	class := c.Query("class")
	if class == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingField)
		return
	}

	week, err := h.table.ResolveWeek(class)
	if err != nil {
		h.failResolve(c, err)
		return
	}

	named := make(map[string]timetable.DayOverview, len(week))
	for day, overview := range week {
		named[day.String()] = overview
	}

	response.Success(c, http.StatusOK, gin.H{
		"class":         class,
		"week_schedule": named,
	})
}

func (h *ScheduleHandler) failResolve(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timetable.ErrClassNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrClassNotFound)
	case errors.Is(err, timetable.ErrDayNotFound):
		response.Fail(c, http.StatusBadRequest, response.ErrDayNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
