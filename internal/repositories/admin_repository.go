package repositories

import (
	"context"
	"time"

	"attendance_backend/internal/models"
)

// AdminRepository defines the database operations on admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type adminRepository struct {
	db SQLExecutor
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db SQLExecutor) AdminRepository {
	return &adminRepository{db: db}
}

func scanAdmin(row scanner) (*models.Admin, error) {
	var a models.Admin
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, wrapPQError(err, "scanning admin")
	}
	return &a, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	query := `INSERT INTO admin (name, email, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := r.db.QueryRowContext(ctx, query, admin.Name, admin.Email, admin.PasswordHash, currentTime, currentTime).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return nil, wrapPQError(err, "creating admin")
	}
	return admin, nil
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	query := `SELECT id, name, email, password_hash, created_at, updated_at FROM admin WHERE id = $1`
	return scanAdmin(r.db.QueryRowContext(ctx, query, id))
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT id, name, email, password_hash, created_at, updated_at FROM admin WHERE LOWER(email) = LOWER($1)`
	return scanAdmin(r.db.QueryRowContext(ctx, query, email))
}
