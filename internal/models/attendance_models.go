package models

import "time"

const (
	AttendanceStatusOnTime = "OnTime"
	AttendanceStatusLate   = "Late"
)

// Attendance is one check-in. At most one exists per employee per WorkDate.
type Attendance struct {
	ID             int64     `json:"id" db:"id"`
	EmployeeID     int64     `json:"employee_id" db:"employee_id"`
	Date           time.Time `json:"date" db:"date"`
	WorkDate       string    `json:"work_date" db:"work_date"`
	Status         string    `json:"status" db:"status"`
	WorkScheduleID *int64    `json:"work_schedule_id,omitempty" db:"work_schedules_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// AttendanceView is an attendance row joined with the employee for listings.
type AttendanceView struct {
	AttendanceID   int64     `json:"attendance_id"`
	EmployeeID     int64     `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	Position       string    `json:"position"`
	AttendanceDate time.Time `json:"attendance_date"`
	Status         string    `json:"status"`
	ScheduleName   *string   `json:"schedule_name,omitempty"`
}

// AttendanceFilters drives the admin attendance listing.
type AttendanceFilters struct {
	EmployeeID *int64
	WorkDate   *string
	Page       int
	PageSize   int
}
