package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
)

const maxToleranceMinutes = 12 * 60

var ErrScheduleNameExists = errors.New("work schedule name already exists")

// WorkScheduleRequest DTO. Times are HH:MM; tolerance defaults to 0.
type WorkScheduleRequest struct {
	Name             string `json:"name" binding:"required"`
	StartTime        string `json:"start_time" binding:"required"`
	EndTime          string `json:"end_time" binding:"required"`
	ToleranceMinutes *int   `json:"tolerance_minutes"`
}

// AvailableSchedules DTO
type AvailableSchedules struct {
	DailySchedules []models.DailySchedule `json:"daily_schedules"`
	WorkSchedules  []models.WorkShift     `json:"work_schedules"`
}

type WorkScheduleService interface {
	CreateShift(ctx context.Context, req WorkScheduleRequest) (*models.WorkShift, error)
	GetShift(ctx context.Context, id int64) (*models.WorkShiftDetail, error)
	ListShifts(ctx context.Context) ([]models.WorkShift, error)
	UpdateShift(ctx context.Context, id int64, req WorkScheduleRequest) (*models.WorkShift, error)
	DeleteShift(ctx context.Context, id int64) error
	ListDailySchedules(ctx context.Context) ([]models.DailySchedule, error)
	AvailableSchedules(ctx context.Context) (*AvailableSchedules, error)
}

type workScheduleService struct {
	schedules repositories.WorkScheduleRepository
}

// NewWorkScheduleService creates a new instance of WorkScheduleService.
func NewWorkScheduleService(wr repositories.WorkScheduleRepository) WorkScheduleService {
	return &workScheduleService{schedules: wr}
}

func shiftFromRequest(req WorkScheduleRequest) (*models.WorkShift, error) {
	shift := &models.WorkShift{
		Name:      strings.TrimSpace(req.Name),
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
	}
	if req.ToleranceMinutes != nil {
		shift.ToleranceMinutes = *req.ToleranceMinutes
	}

	var problems []string
	if shift.Name == "" {
		problems = append(problems, "name is required")
	}
	if _, _, _, err := models.ParseClock(shift.StartTime); err != nil {
		problems = append(problems, "start_time: "+err.Error())
	}
	if _, _, _, err := models.ParseClock(shift.EndTime); err != nil {
		problems = append(problems, "end_time: "+err.Error())
	}
	if shift.ToleranceMinutes < 0 || shift.ToleranceMinutes > maxToleranceMinutes {
		problems = append(problems, fmt.Sprintf("tolerance_minutes must be between 0 and %d", maxToleranceMinutes))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	shift.StartTime = models.NormalizeClock(shift.StartTime)
	shift.EndTime = models.NormalizeClock(shift.EndTime)
	return shift, nil
}

func (s *workScheduleService) CreateShift(ctx context.Context, req WorkScheduleRequest) (*models.WorkShift, error) {
	shift, err := shiftFromRequest(req)
	if err != nil {
		return nil, err
	}
	created, err := s.schedules.CreateShift(ctx, shift)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrScheduleNameExists
		}
		return nil, fmt.Errorf("failed to create work schedule: %w", err)
	}
	return created, nil
}

func (s *workScheduleService) GetShift(ctx context.Context, id int64) (*models.WorkShiftDetail, error) {
	detail, err := s.schedules.GetShiftDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to retrieve work schedule: %w", err)
	}
	return detail, nil
}

func (s *workScheduleService) ListShifts(ctx context.Context) ([]models.WorkShift, error) {
	shifts, err := s.schedules.ListShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve work schedules: %w", err)
	}
	return shifts, nil
}

func (s *workScheduleService) UpdateShift(ctx context.Context, id int64, req WorkScheduleRequest) (*models.WorkShift, error) {
	shift, err := shiftFromRequest(req)
	if err != nil {
		return nil, err
	}
	shift.ID = id
	updated, err := s.schedules.UpdateShift(ctx, shift)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrShiftNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrScheduleNameExists
		}
		return nil, fmt.Errorf("failed to update work schedule: %w", err)
	}
	return updated, nil
}

// DeleteShift removes the shift together with its assignments.
func (s *workScheduleService) DeleteShift(ctx context.Context, id int64) error {
	if err := s.schedules.DeleteShift(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete work schedule: %w", err)
	}
	return nil
}

func (s *workScheduleService) ListDailySchedules(ctx context.Context) ([]models.DailySchedule, error) {
	days, err := s.schedules.ListDailySchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve daily schedules: %w", err)
	}
	return days, nil
}

func (s *workScheduleService) AvailableSchedules(ctx context.Context) (*AvailableSchedules, error) {
	days, err := s.ListDailySchedules(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := s.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	return &AvailableSchedules{DailySchedules: days, WorkSchedules: shifts}, nil
}
