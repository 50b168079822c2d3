package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance_backend/internal/models"
)

// WorkScheduleRepository covers work shifts, weekday labels and the
// employee assignments joining them.
type WorkScheduleRepository interface {
	// Work shift methods
	CreateShift(ctx context.Context, shift *models.WorkShift) (*models.WorkShift, error)
	GetShiftByID(ctx context.Context, id int64) (*models.WorkShift, error)
	GetShiftDetail(ctx context.Context, id int64) (*models.WorkShiftDetail, error)
	ListShifts(ctx context.Context) ([]models.WorkShift, error)
	UpdateShift(ctx context.Context, shift *models.WorkShift) (*models.WorkShift, error)
	DeleteShift(ctx context.Context, id int64) error

	// DailySchedule methods
	ListDailySchedules(ctx context.Context) ([]models.DailySchedule, error)
	GetDailyScheduleByID(ctx context.Context, id int64) (*models.DailySchedule, error)

	// Assignment methods
	CreateAssignment(ctx context.Context, assignment *models.EmployeeSchedule) (*models.EmployeeSchedule, error)
	DeleteAssignment(ctx context.Context, employeeID, assignmentID int64) error
	FindAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.EmployeeScheduleView, error)
}

type workScheduleRepository struct {
	db SQLExecutor
}

// NewWorkScheduleRepository creates a new instance of WorkScheduleRepository.
func NewWorkScheduleRepository(db SQLExecutor) WorkScheduleRepository {
	return &workScheduleRepository{db: db}
}

// --- Work shift methods ---

const shiftColumns = `id, name, start_time, end_time, tolerance_minutes, created_at, updated_at`

func scanShift(row scanner, extra ...interface{}) (*models.WorkShift, error) {
	var s models.WorkShift
	dest := append([]interface{}{&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.ToleranceMinutes, &s.CreatedAt, &s.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, wrapPQError(err, "scanning work schedule")
	}
	s.StartTime = models.NormalizeClock(s.StartTime)
	s.EndTime = models.NormalizeClock(s.EndTime)
	return &s, nil
}

func (r *workScheduleRepository) CreateShift(ctx context.Context, shift *models.WorkShift) (*models.WorkShift, error) {
	query := `INSERT INTO work_schedules (name, start_time, end_time, tolerance_minutes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		shift.Name, shift.StartTime, shift.EndTime, shift.ToleranceMinutes, currentTime, currentTime,
	).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
	if err != nil {
		return nil, wrapPQError(err, "creating work schedule")
	}
	return shift, nil
}

func (r *workScheduleRepository) GetShiftByID(ctx context.Context, id int64) (*models.WorkShift, error) {
	query := `SELECT ` + shiftColumns + ` FROM work_schedules WHERE id = $1`
	return scanShift(r.db.QueryRowContext(ctx, query, id))
}

func (r *workScheduleRepository) GetShiftDetail(ctx context.Context, id int64) (*models.WorkShiftDetail, error) {
	query := `SELECT ws.id, ws.name, ws.start_time, ws.end_time, ws.tolerance_minutes, ws.created_at, ws.updated_at,
	                 (SELECT COUNT(DISTINCT es.employee_id) FROM employee_schedules es WHERE es.work_schedules_id = ws.id)
	          FROM work_schedules ws WHERE ws.id = $1`

	var count int
	shift, err := scanShift(r.db.QueryRowContext(ctx, query, id), &count)
	if err != nil {
		return nil, err
	}
	return &models.WorkShiftDetail{WorkShift: *shift, EmployeeCount: count}, nil
}

func (r *workScheduleRepository) ListShifts(ctx context.Context) ([]models.WorkShift, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+shiftColumns+` FROM work_schedules ORDER BY id ASC`)
	if err != nil {
		return nil, wrapPQError(err, "querying work schedules")
	}
	defer rows.Close()

	shifts := []models.WorkShift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPQError(err, "iterating work schedules")
	}
	return shifts, nil
}

func (r *workScheduleRepository) UpdateShift(ctx context.Context, shift *models.WorkShift) (*models.WorkShift, error) {
	query := `UPDATE work_schedules
	          SET name = $1, start_time = $2, end_time = $3, tolerance_minutes = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		shift.Name, shift.StartTime, shift.EndTime, shift.ToleranceMinutes, time.Now(), shift.ID,
	).Scan(&shift.CreatedAt, &shift.UpdatedAt)
	if err != nil {
		return nil, wrapPQError(err, "updating work schedule")
	}
	return shift, nil
}

func (r *workScheduleRepository) DeleteShift(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_schedules WHERE id = $1`, id)
	if err != nil {
		return wrapPQError(err, "deleting work schedule")
	}
	return checkAffected(res, "deleting work schedule")
}

// --- DailySchedule methods ---

func (r *workScheduleRepository) ListDailySchedules(ctx context.Context) ([]models.DailySchedule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM daily_schedules ORDER BY id ASC`)
	if err != nil {
		return nil, wrapPQError(err, "querying daily schedules")
	}
	defer rows.Close()

	days := []models.DailySchedule{}
	for rows.Next() {
		var d models.DailySchedule
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, wrapPQError(err, "scanning daily schedule")
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPQError(err, "iterating daily schedules")
	}
	return days, nil
}

func (r *workScheduleRepository) GetDailyScheduleByID(ctx context.Context, id int64) (*models.DailySchedule, error) {
	var d models.DailySchedule
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM daily_schedules WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, wrapPQError(err, "fetching daily schedule")
	}
	return &d, nil
}

// --- Assignment methods ---

func (r *workScheduleRepository) CreateAssignment(ctx context.Context, assignment *models.EmployeeSchedule) (*models.EmployeeSchedule, error) {
	query := `INSERT INTO employee_schedules (employee_id, work_schedules_id, daily_schedules_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		assignment.EmployeeID, assignment.WorkScheduleID, assignment.DailyScheduleID, currentTime, currentTime,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return nil, wrapPQError(err, "creating employee schedule")
	}
	return assignment, nil
}

func (r *workScheduleRepository) DeleteAssignment(ctx context.Context, employeeID, assignmentID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employee_schedules WHERE id = $1 AND employee_id = $2`, assignmentID, employeeID)
	if err != nil {
		return wrapPQError(err, "deleting employee schedule")
	}
	return checkAffected(res, "deleting employee schedule")
}

func (r *workScheduleRepository) FindAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.EmployeeScheduleView, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT es.id, ws.id, ws.name, ds.id, ds.name, ws.start_time, ws.end_time, ws.tolerance_minutes
	  FROM employee_schedules es
	  JOIN work_schedules ws ON es.work_schedules_id = ws.id
	  JOIN daily_schedules ds ON es.daily_schedules_id = ds.id
	  WHERE es.employee_id = $1`)

	args := []interface{}{filter.EmployeeID}
	if filter.ShiftID != nil {
		args = append(args, *filter.ShiftID)
		queryBuilder.WriteString(fmt.Sprintf(" AND es.work_schedules_id = $%d", len(args)))
	}
	if filter.Weekday != nil {
		args = append(args, strings.TrimSpace(*filter.Weekday))
		queryBuilder.WriteString(fmt.Sprintf(" AND LOWER(ds.name) = LOWER($%d)", len(args)))
	}
	queryBuilder.WriteString(" ORDER BY ds.id ASC, ws.start_time ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, wrapPQError(err, "querying employee schedules")
	}
	defer rows.Close()

	views := []models.EmployeeScheduleView{}
	for rows.Next() {
		var v models.EmployeeScheduleView
		if err := rows.Scan(&v.AssignmentID, &v.ScheduleID, &v.ScheduleName, &v.DayID, &v.DayName,
			&v.StartTime, &v.EndTime, &v.ToleranceMinutes); err != nil {
			return nil, wrapPQError(err, "scanning employee schedule")
		}
		v.StartTime = models.NormalizeClock(v.StartTime)
		v.EndTime = models.NormalizeClock(v.EndTime)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPQError(err, "iterating employee schedules")
	}
	return views, nil
}
