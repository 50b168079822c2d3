package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
	"attendance_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrAccountNotFound     = errors.New("account not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrTokenGeneration     = errors.New("failed to generate token")
)

const MinPasswordLength = 6

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest DTO
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateAdminRequest DTO
type CreateAdminRequest struct {
	Name     string
	Email    string
	Password string
}

// AuthResponse DTO. Exactly one of Admin and Employee is set.
type AuthResponse struct {
	AccessToken  string           `json:"access_token,omitempty"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	TokenType    string           `json:"token_type,omitempty"`
	ExpiresIn    int              `json:"expires_in,omitempty"`
	Role         string           `json:"role"`
	Admin        *models.Admin    `json:"admin,omitempty"`
	Employee     *models.Employee `json:"employee,omitempty"`
}

// --- AuthService Interface ---
type AuthService interface {
	AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	EmployeeLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Me(ctx context.Context, principal models.Principal) (*AuthResponse, error)
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*models.Admin, error)
}

// --- authService Implementation ---
type authService struct {
	admins    repositories.AdminRepository
	employees repositories.EmployeeRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(ar repositories.AdminRepository, er repositories.EmployeeRepository) AuthService {
	return &authService{admins: ar, employees: er}
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func issueTokens(id int64, email, role string) (*AuthResponse, error) {
	accessToken, err := utils.GenerateAccessToken(id, email, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refreshToken, err := utils.GenerateRefreshToken(id, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(utils.AccessTokenTTL().Seconds()),
		Role:         role,
	}, nil
}

func (s *authService) AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("admin login attempt failed: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	resp, err := issueTokens(admin.ID, admin.Email, utils.RoleAdmin)
	if err != nil {
		return nil, err
	}
	resp.Admin = admin
	return resp, nil
}

func (s *authService) EmployeeLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	employee, err := s.employees.GetByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("employee login attempt failed: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	resp, err := issueTokens(employee.ID, employee.Email, utils.RoleEmployee)
	if err != nil {
		return nil, err
	}
	resp.Employee = employee
	return resp, nil
}

// RefreshToken exchanges a refresh token for a new access token. The account
// must still exist.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	resp, err := s.Me(ctx, models.Principal{ID: claims.UserID, Role: claims.Role})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	email := ""
	if resp.Admin != nil {
		email = resp.Admin.Email
	} else if resp.Employee != nil {
		email = resp.Employee.Email
	}
	resp.AccessToken, err = utils.GenerateAccessToken(claims.UserID, email, claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	resp.TokenType = "Bearer"
	resp.ExpiresIn = int(utils.AccessTokenTTL().Seconds())
	return resp, nil
}

// Me loads the account behind an authenticated principal.
func (s *authService) Me(ctx context.Context, principal models.Principal) (*AuthResponse, error) {
	resp := &AuthResponse{Role: principal.Role}
	switch principal.Role {
	case utils.RoleAdmin:
		admin, err := s.admins.GetByID(ctx, principal.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, fmt.Errorf("failed to load admin %d: %w", principal.ID, err)
		}
		resp.Admin = admin
	case utils.RoleEmployee:
		employee, err := s.employees.GetByID(ctx, principal.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, fmt.Errorf("failed to load employee %d: %w", principal.ID, err)
		}
		resp.Employee = employee
	default:
		return nil, ErrAccountNotFound
	}
	return resp, nil
}

// CreateAdmin seeds an admin account. Used by the create-admin command.
func (s *authService) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*models.Admin, error) {
	name := strings.TrimSpace(req.Name)
	email := utils.NormalizeEmail(req.Email)
	if name == "" || !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: name and a valid email are required", ErrValidation)
	}
	if !utils.IsValidPasswordLength(req.Password, MinPasswordLength) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	admin, err := s.admins.Create(ctx, &models.Admin{Name: name, Email: email, PasswordHash: hashed})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}
