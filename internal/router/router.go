package router

import (
	"database/sql"

	"attendance_backend/internal/config"
	"attendance_backend/internal/handlers"
	"attendance_backend/internal/repositories"
	"attendance_backend/internal/services"
	"attendance_backend/internal/tokenstore"
	"attendance_backend/pkg/clock"

	"github.com/gin-gonic/gin"
)

// Handlers is every HTTP handler the API serves.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Employee     *handlers.EmployeeHandler
	WorkSchedule *handlers.WorkScheduleHandler
	Attendance   *handlers.AttendanceHandler
	Health       *handlers.HealthHandler
}

// Setup wires repositories, services and handlers and registers the routes.
func Setup(engine *gin.Engine, db *sql.DB, store tokenstore.Store, clk clock.Clock, cfg *config.Config) {
	// Initialize Repositories
	employeeRepo := repositories.NewEmployeeRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	scheduleRepo := repositories.NewWorkScheduleRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)

	// Initialize Services
	authService := services.NewAuthService(adminRepo, employeeRepo)
	employeeService := services.NewEmployeeService(employeeRepo, scheduleRepo)
	scheduleService := services.NewWorkScheduleService(scheduleRepo)
	attendanceService := services.NewAttendanceService(attendanceRepo, employeeRepo)
	directory := services.NewScheduleDirectory(employeeRepo, scheduleRepo, clk, cfg.Location)
	qrService := services.NewQRAttendanceService(store, employeeRepo, scheduleRepo, attendanceRepo, clk, cfg.QRTokenTTL, cfg.Location)

	// Initialize Handlers
	RegisterRoutes(engine, Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Employee:     handlers.NewEmployeeHandler(employeeService),
		WorkSchedule: handlers.NewWorkScheduleHandler(scheduleService),
		Attendance:   handlers.NewAttendanceHandler(qrService, directory, attendanceService),
		Health:       handlers.NewHealthHandler(db),
	})
}

// RegisterRoutes mounts the health check and every route group under /api.
func RegisterRoutes(engine *gin.Engine, h Handlers) {
	engine.GET("/ping", h.Health.Ping)

	api := engine.Group("/api")

	SetupAuthRoutes(api, h.Auth)
	SetupAdminRoutes(api, h)
	SetupAttendanceRoutes(api, h.Attendance)
	SetupEmployeeSelfRoutes(api, h.Attendance)
}
