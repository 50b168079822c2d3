package models

import "time"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Employee represents an employee who checks in against assigned shifts.
type Employee struct {
	ID           int64     `json:"id" db:"id"`
	NIK          string    `json:"nik" db:"nik"`
	Name         string    `json:"name" db:"name"`
	Gender       string    `json:"gender" db:"gender"`
	Position     string    `json:"position" db:"position"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeeDetail is an employee together with the weekly schedule rows assigned to them.
type EmployeeDetail struct {
	Employee
	Schedules []EmployeeScheduleView `json:"schedules"`
}

// IsValidGender reports whether g is one of the accepted gender labels.
func IsValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
