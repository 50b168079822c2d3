package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
	"attendance_backend/pkg/clock"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrNoScheduleToday means the employee has no shift on the requested
	// weekday. It is a normal outcome, not a failure.
	ErrNoScheduleToday = errors.New("no schedule assigned for this day")
)

const (
	TodayStatusPresent = "present"
	TodayStatusNone    = "none"
)

// TodayShiftResponse DTO
type TodayShiftResponse struct {
	Status           string `json:"status"`
	DayName          string `json:"day_name"`
	ShiftID          int64  `json:"shift_id,omitempty"`
	ShiftName        string `json:"shift_name,omitempty"`
	StartTime        string `json:"start_time,omitempty"`
	EndTime          string `json:"end_time,omitempty"`
	ToleranceMinutes int    `json:"tolerance_minutes,omitempty"`
}

// ScheduleDirectory answers which shift an employee works on a weekday.
type ScheduleDirectory interface {
	ShiftFor(ctx context.Context, employeeID int64, weekday string) (*models.WorkShift, error)
	ShiftForEmployeeToday(ctx context.Context, employeeID int64) (*TodayShiftResponse, error)
}

type scheduleDirectory struct {
	employees repositories.EmployeeRepository
	schedules repositories.WorkScheduleRepository
	clock     clock.Clock
	location  *time.Location
}

// NewScheduleDirectory creates a new instance of ScheduleDirectory.
func NewScheduleDirectory(er repositories.EmployeeRepository, wr repositories.WorkScheduleRepository, clk clock.Clock, loc *time.Location) ScheduleDirectory {
	if loc == nil {
		loc = time.Local
	}
	return &scheduleDirectory{employees: er, schedules: wr, clock: clk, location: loc}
}

// ShiftFor returns the employee's shift on weekday (e.g. "Monday", any case).
// With several shifts on one day the earliest start wins.
func (d *scheduleDirectory) ShiftFor(ctx context.Context, employeeID int64, weekday string) (*models.WorkShift, error) {
	exists, err := d.employees.Exists(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check employee %d: %w", employeeID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, employeeID)
	}

	day := strings.TrimSpace(weekday)
	rows, err := d.schedules.FindAssignments(ctx, models.AssignmentFilter{EmployeeID: employeeID, Weekday: &day})
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments for employee %d: %w", employeeID, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoScheduleToday
	}

	best := rows[0]
	bestStart := clockMinutes(best.StartTime)
	for _, row := range rows[1:] {
		if start := clockMinutes(row.StartTime); start < bestStart {
			best, bestStart = row, start
		}
	}

	return &models.WorkShift{
		ID:               best.ScheduleID,
		Name:             best.ScheduleName,
		StartTime:        best.StartTime,
		EndTime:          best.EndTime,
		ToleranceMinutes: best.ToleranceMinutes,
	}, nil
}

func (d *scheduleDirectory) ShiftForEmployeeToday(ctx context.Context, employeeID int64) (*TodayShiftResponse, error) {
	dayName := d.clock.Now().In(d.location).Weekday().String()

	shift, err := d.ShiftFor(ctx, employeeID, dayName)
	if errors.Is(err, ErrNoScheduleToday) {
		return &TodayShiftResponse{Status: TodayStatusNone, DayName: dayName}, nil
	}
	if err != nil {
		return nil, err
	}
	return &TodayShiftResponse{
		Status:           TodayStatusPresent,
		DayName:          dayName,
		ShiftID:          shift.ID,
		ShiftName:        shift.Name,
		StartTime:        shift.StartTime,
		EndTime:          shift.EndTime,
		ToleranceMinutes: shift.ToleranceMinutes,
	}, nil
}

// clockMinutes orders HH:MM values; unparsable values sort last.
func clockMinutes(s string) int {
	h, m, _, err := models.ParseClock(s)
	if err != nil {
		return 24 * 60
	}
	return h*60 + m
}
