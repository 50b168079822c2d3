package models

import (
	"fmt"
	"strings"
	"time"
)

// WorkShift is a named time-of-day work period (stored in work_schedules).
// StartTime and EndTime are wall-clock values formatted as HH:MM.
type WorkShift struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	StartTime        string    `json:"start_time" db:"start_time"`
	EndTime          string    `json:"end_time" db:"end_time"`
	ToleranceMinutes int       `json:"tolerance_minutes" db:"tolerance_minutes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// WorkShiftDetail adds the number of employees assigned to the shift.
type WorkShiftDetail struct {
	WorkShift
	EmployeeCount int `json:"employee_count"`
}

// DailySchedule is a weekday label such as "Monday".
type DailySchedule struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeeSchedule links an employee to a (WorkShift, DailySchedule) pair.
type EmployeeSchedule struct {
	ID              int64     `json:"id" db:"id"`
	EmployeeID      int64     `json:"employee_id" db:"employee_id"`
	WorkScheduleID  int64     `json:"work_schedule_id" db:"work_schedules_id"`
	DailyScheduleID int64     `json:"daily_schedule_id" db:"daily_schedules_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeeScheduleView is an assignment joined with its shift and weekday.
type EmployeeScheduleView struct {
	AssignmentID     int64  `json:"assignment_id"`
	ScheduleID       int64  `json:"schedule_id"`
	ScheduleName     string `json:"schedule_name"`
	DayID            int64  `json:"day_id"`
	DayName          string `json:"day_name"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	ToleranceMinutes int    `json:"tolerance_minutes"`
}

// AssignmentFilter narrows an assignment lookup. Nil fields are not filtered on.
type AssignmentFilter struct {
	EmployeeID int64
	ShiftID    *int64
	Weekday    *string
}

// ParseClock parses "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (hour, minute, second int, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, perr := time.Parse(layout, s)
		if perr == nil {
			return t.Hour(), t.Minute(), t.Second(), nil
		}
	}
	return 0, 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
}

// NormalizeClock turns a database TIME value such as "08:00:00" into "08:00".
func NormalizeClock(s string) string {
	h, m, _, err := ParseClock(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// StartOn returns the shift start as an instant on the calendar date of day,
// in day's location.
func (s *WorkShift) StartOn(day time.Time) (time.Time, error) {
	h, m, sec, err := ParseClock(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, sec, 0, day.Location()), nil
}

// Tolerance is the punctuality window on either side of the start time.
func (s *WorkShift) Tolerance() time.Duration {
	return time.Duration(s.ToleranceMinutes) * time.Minute
}
