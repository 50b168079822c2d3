package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
	"attendance_backend/pkg/utils"
)

// --- Custom Service Errors for Employees ---
var (
	ErrValidation            = errors.New("validation error")
	ErrNIKExists             = errors.New("nik already exists")
	ErrAssignmentNotFound    = errors.New("schedule assignment not found")
	ErrAssignmentExists      = errors.New("employee already has this schedule on this day")
	ErrDailyScheduleNotFound = errors.New("daily schedule not found")
)

// --- Employee DTOs ---
type CreateEmployeeRequest struct {
	NIK      string `json:"nik" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Gender   string `json:"gender" binding:"required"`
	Position string `json:"position" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateEmployeeRequest serves both PUT and PATCH. Nil fields are left as is
// on PATCH and rejected on PUT (except Password, which is always optional).
type UpdateEmployeeRequest struct {
	NIK      *string `json:"nik"`
	Name     *string `json:"name"`
	Gender   *string `json:"gender"`
	Position *string `json:"position"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type CreateAssignmentRequest struct {
	WorkScheduleID  int64 `json:"work_schedule_id" binding:"required"`
	DailyScheduleID int64 `json:"daily_schedule_id" binding:"required"`
}

// --- EmployeeService Interface ---
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*models.EmployeeDetail, error)
	ListEmployees(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Employee, int, error)
	UpdateEmployee(ctx context.Context, id int64, req UpdateEmployeeRequest, partial bool) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error

	ListAssignments(ctx context.Context, employeeID int64) ([]models.EmployeeScheduleView, error)
	AssignSchedule(ctx context.Context, employeeID int64, req CreateAssignmentRequest) (*models.EmployeeScheduleView, error)
	RemoveAssignment(ctx context.Context, employeeID, assignmentID int64) error
}

type employeeService struct {
	employees repositories.EmployeeRepository
	schedules repositories.WorkScheduleRepository
}

// NewEmployeeService creates a new instance of EmployeeService.
func NewEmployeeService(er repositories.EmployeeRepository, wr repositories.WorkScheduleRepository) EmployeeService {
	return &employeeService{employees: er, schedules: wr}
}

func validateEmployee(e *models.Employee) error {
	var problems []string
	if utils.IsEmpty(e.NIK) {
		problems = append(problems, "nik is required")
	}
	if utils.IsEmpty(e.Name) {
		problems = append(problems, "name is required")
	}
	if !models.IsValidGender(e.Gender) {
		problems = append(problems, "gender must be Male, Female or Other")
	}
	if utils.IsEmpty(e.Position) {
		problems = append(problems, "position is required")
	}
	if !utils.IsValidEmail(e.Email) {
		problems = append(problems, "email is invalid")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// mapEmployeeWriteError tells the two unique columns apart by constraint name.
func mapEmployeeWriteError(err error, action string) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		if strings.Contains(err.Error(), "nik") {
			return ErrNIKExists
		}
		return ErrEmailExists
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrEmployeeNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func (s *employeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	employee := &models.Employee{
		NIK:      strings.TrimSpace(req.NIK),
		Name:     strings.TrimSpace(req.Name),
		Gender:   strings.TrimSpace(req.Gender),
		Position: strings.TrimSpace(req.Position),
		Email:    utils.NormalizeEmail(req.Email),
	}
	if err := validateEmployee(employee); err != nil {
		return nil, err
	}
	if !utils.IsValidPasswordLength(req.Password, MinPasswordLength) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	employee.PasswordHash = hashed

	created, err := s.employees.Create(ctx, employee)
	if err != nil {
		return nil, mapEmployeeWriteError(err, "create employee")
	}
	return created, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id int64) (*models.EmployeeDetail, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve employee: %w", err)
	}
	schedules, err := s.schedules.FindAssignments(ctx, models.AssignmentFilter{EmployeeID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve employee schedules: %w", err)
	}
	return &models.EmployeeDetail{Employee: *employee, Schedules: schedules}, nil
}

func (s *employeeService) ListEmployees(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Employee, int, error) {
	employees, total, err := s.employees.List(ctx, page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve employees: %w", err)
	}
	return employees, total, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, id int64, req UpdateEmployeeRequest, partial bool) (*models.Employee, error) {
	if !partial && (req.NIK == nil || req.Name == nil || req.Gender == nil || req.Position == nil || req.Email == nil) {
		return nil, fmt.Errorf("%w: nik, name, gender, position and email are required", ErrValidation)
	}

	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve employee for update: %w", err)
	}

	if req.NIK != nil {
		employee.NIK = strings.TrimSpace(*req.NIK)
	}
	if req.Name != nil {
		employee.Name = strings.TrimSpace(*req.Name)
	}
	if req.Gender != nil {
		employee.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Position != nil {
		employee.Position = strings.TrimSpace(*req.Position)
	}
	if req.Email != nil {
		employee.Email = utils.NormalizeEmail(*req.Email)
	}
	if err := validateEmployee(employee); err != nil {
		return nil, err
	}
	if req.Password != nil && *req.Password != "" {
		if !utils.IsValidPasswordLength(*req.Password, MinPasswordLength) {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
		}
		hashed, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		employee.PasswordHash = hashed
	}

	updated, err := s.employees.Update(ctx, employee)
	if err != nil {
		return nil, mapEmployeeWriteError(err, "update employee")
	}
	return updated, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

func (s *employeeService) ensureEmployee(ctx context.Context, id int64) error {
	exists, err := s.employees.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check employee %d: %w", id, err)
	}
	if !exists {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *employeeService) ListAssignments(ctx context.Context, employeeID int64) ([]models.EmployeeScheduleView, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	views, err := s.schedules.FindAssignments(ctx, models.AssignmentFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve employee schedules: %w", err)
	}
	return views, nil
}

func (s *employeeService) AssignSchedule(ctx context.Context, employeeID int64, req CreateAssignmentRequest) (*models.EmployeeScheduleView, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	shift, err := s.schedules.GetShiftByID(ctx, req.WorkScheduleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to validate work schedule: %w", err)
	}
	day, err := s.schedules.GetDailyScheduleByID(ctx, req.DailyScheduleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDailyScheduleNotFound
		}
		return nil, fmt.Errorf("failed to validate daily schedule: %w", err)
	}

	assignment, err := s.schedules.CreateAssignment(ctx, &models.EmployeeSchedule{
		EmployeeID:      employeeID,
		WorkScheduleID:  shift.ID,
		DailyScheduleID: day.ID,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAssignmentExists
		}
		return nil, fmt.Errorf("failed to assign schedule: %w", err)
	}

	return &models.EmployeeScheduleView{
		AssignmentID:     assignment.ID,
		ScheduleID:       shift.ID,
		ScheduleName:     shift.Name,
		DayID:            day.ID,
		DayName:          day.Name,
		StartTime:        shift.StartTime,
		EndTime:          shift.EndTime,
		ToleranceMinutes: shift.ToleranceMinutes,
	}, nil
}

func (s *employeeService) RemoveAssignment(ctx context.Context, employeeID, assignmentID int64) error {
	if err := s.schedules.DeleteAssignment(ctx, employeeID, assignmentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to remove schedule assignment: %w", err)
	}
	return nil
}
