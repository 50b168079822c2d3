package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance_backend/internal/models"
)

const workDateLayout = "2006-01-02"

// AttendanceRepository defines the database operations on attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) (*models.Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID int64, workDate string) (*models.Attendance, error)
	List(ctx context.Context, filters models.AttendanceFilters) ([]models.AttendanceView, int, error)
}

type attendanceRepository struct {
	db SQLExecutor
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db SQLExecutor) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Create inserts one check-in. A second row for the same employee and work_date
// violates attendance_employee_work_date_key and comes back as ErrDuplicateKey.
func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) (*models.Attendance, error) {
	query := `INSERT INTO attendance (employee_id, date, work_date, status, work_schedules_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		attendance.EmployeeID, attendance.Date, attendance.WorkDate, attendance.Status,
		attendance.WorkScheduleID, time.Now(),
	).Scan(&attendance.ID, &attendance.CreatedAt)
	if err != nil {
		return nil, wrapPQError(err, "creating attendance")
	}
	return attendance, nil
}

func (r *attendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID int64, workDate string) (*models.Attendance, error) {
	query := `SELECT id, employee_id, date, work_date, status, work_schedules_id, created_at
	          FROM attendance
	          WHERE employee_id = $1 AND work_date = $2
	          ORDER BY date ASC
	          LIMIT 1`

	var a models.Attendance
	var storedDate time.Time
	err := r.db.QueryRowContext(ctx, query, employeeID, workDate).Scan(
		&a.ID, &a.EmployeeID, &a.Date, &storedDate, &a.Status, &a.WorkScheduleID, &a.CreatedAt,
	)
	if err != nil {
		return nil, wrapPQError(err, "finding attendance by employee and date")
	}
	a.WorkDate = storedDate.Format(workDateLayout)
	return &a, nil
}

func (r *attendanceRepository) List(ctx context.Context, filters models.AttendanceFilters) ([]models.AttendanceView, int, error) {
	list := []models.AttendanceView{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT a.id, a.employee_id, e.name, e.position, a.date, a.status, ws.name,
	    COUNT(*) OVER() AS total_count
	  FROM attendance a
	  JOIN employee e ON a.employee_id = e.id
	  LEFT JOIN work_schedules ws ON a.work_schedules_id = ws.id`)

	var conditions []string
	var args []interface{}
	if filters.EmployeeID != nil {
		args = append(args, *filters.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", len(args)))
	}
	if filters.WorkDate != nil {
		args = append(args, *filters.WorkDate)
		conditions = append(conditions, fmt.Sprintf("a.work_date = $%d", len(args)))
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY a.date DESC, a.id DESC")

	if filters.PageSize > 0 {
		args = append(args, filters.PageSize, pageOffset(filters.Page, filters.PageSize))
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapPQError(err, "querying attendance")
	}
	defer rows.Close()

	for rows.Next() {
		var v models.AttendanceView
		if err := rows.Scan(&v.AttendanceID, &v.EmployeeID, &v.EmployeeName, &v.Position,
			&v.AttendanceDate, &v.Status, &v.ScheduleName, &totalCount); err != nil {
			return nil, 0, wrapPQError(err, "scanning attendance row")
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapPQError(err, "iterating attendance rows")
	}
	return list, totalCount, nil
}
