package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance_backend/internal/models"
)

// EmployeeRepository defines the database operations on employees.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	GetByID(ctx context.Context, id int64) (*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Employee, int, error)
	Update(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	Delete(ctx context.Context, id int64) error
}

type employeeRepository struct {
	db SQLExecutor
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
func NewEmployeeRepository(db SQLExecutor) EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, nik, name, gender, position, email, password_hash, created_at, updated_at`

func scanEmployee(row scanner) (*models.Employee, error) {
	var e models.Employee
	if err := row.Scan(&e.ID, &e.NIK, &e.Name, &e.Gender, &e.Position, &e.Email,
		&e.PasswordHash, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, wrapPQError(err, "scanning employee")
	}
	return &e, nil
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	query := `INSERT INTO employee (nik, name, gender, position, email, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		employee.NIK, employee.Name, employee.Gender, employee.Position,
		employee.Email, employee.PasswordHash, currentTime, currentTime,
	).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return nil, wrapPQError(err, "creating employee")
	}
	return employee, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employee WHERE id = $1`
	return scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employee WHERE LOWER(email) = LOWER($1)`
	return scanEmployee(r.db.QueryRowContext(ctx, query, email))
}

func (r *employeeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM employee WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, wrapPQError(err, "checking employee existence")
	}
	return exists, nil
}

func (r *employeeRepository) List(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Employee, int, error) {
	employees := []models.Employee{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + employeeColumns + `, COUNT(*) OVER() AS total_count FROM employee`)

	var args []interface{}
	argCount := 1

	if searchTerm != nil && strings.TrimSpace(*searchTerm) != "" {
		searchPattern := "%" + strings.TrimSpace(*searchTerm) + "%"
		queryBuilder.WriteString(fmt.Sprintf(" WHERE (name ILIKE $%d OR nik ILIKE $%d OR email ILIKE $%d OR position ILIKE $%d)",
			argCount, argCount, argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, pageSize, pageOffset(page, pageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapPQError(err, "querying employees")
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.NIK, &e.Name, &e.Gender, &e.Position, &e.Email,
			&e.PasswordHash, &e.CreatedAt, &e.UpdatedAt, &totalCount); err != nil {
			return nil, 0, wrapPQError(err, "scanning employee row")
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapPQError(err, "iterating employee rows")
	}
	return employees, totalCount, nil
}

func (r *employeeRepository) Update(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	query := `UPDATE employee
	          SET nik = $1, name = $2, gender = $3, position = $4, email = $5, password_hash = $6, updated_at = $7
	          WHERE id = $8
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		employee.NIK, employee.Name, employee.Gender, employee.Position,
		employee.Email, employee.PasswordHash, time.Now(), employee.ID,
	).Scan(&employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return nil, wrapPQError(err, "updating employee")
	}
	return employee, nil
}

// Delete removes the employee; assignments and attendance go with it (ON DELETE CASCADE).
func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employee WHERE id = $1`, id)
	if err != nil {
		return wrapPQError(err, "deleting employee")
	}
	return checkAffected(res, "deleting employee")
}

