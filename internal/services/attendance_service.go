package services

import (
	"context"
	"fmt"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// AttendanceService serves the read side of attendance. Writes go through
// the QR engine.
type AttendanceService interface {
	ListAttendance(ctx context.Context, date *string, page, pageSize int) ([]models.AttendanceView, int, error)
	History(ctx context.Context, employeeID int64, page, pageSize int) ([]models.AttendanceView, int, error)
}

type attendanceService struct {
	attendance repositories.AttendanceRepository
	employees  repositories.EmployeeRepository
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(ar repositories.AttendanceRepository, er repositories.EmployeeRepository) AttendanceService {
	return &attendanceService{attendance: ar, employees: er}
}

// NormalizePaging clamps page and page size to sane values.
func NormalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func (s *attendanceService) ListAttendance(ctx context.Context, date *string, page, pageSize int) ([]models.AttendanceView, int, error) {
	if date != nil {
		if _, err := time.Parse(workDateLayout, *date); err != nil {
			return nil, 0, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
		}
	}
	page, pageSize = NormalizePaging(page, pageSize)
	list, total, err := s.attendance.List(ctx, models.AttendanceFilters{WorkDate: date, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve attendance: %w", err)
	}
	return list, total, nil
}

func (s *attendanceService) History(ctx context.Context, employeeID int64, page, pageSize int) ([]models.AttendanceView, int, error) {
	exists, err := s.employees.Exists(ctx, employeeID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to check employee %d: %w", employeeID, err)
	}
	if !exists {
		return nil, 0, ErrEmployeeNotFound
	}
	page, pageSize = NormalizePaging(page, pageSize)
	list, total, err := s.attendance.List(ctx, models.AttendanceFilters{EmployeeID: &employeeID, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve attendance history: %w", err)
	}
	return list, total, nil
}
