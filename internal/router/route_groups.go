package router

import (
	"attendance_backend/internal/handlers"
	"attendance_backend/internal/middleware"
	"attendance_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/admin/login", authHandler.AdminLogin)
		authRoutes.POST("/employee/login", authHandler.EmployeeLogin)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.Me)
		}
	}
}

// SetupAdminRoutes sets up everything under /admin. Admin role only.
func SetupAdminRoutes(apiGroup *gin.RouterGroup, h Handlers) {
	adminRoutes := apiGroup.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(), middleware.RoleAuthMiddleware(utils.RoleAdmin))
	{
		employeeRoutes := adminRoutes.Group("/employees")
		{
			employeeRoutes.GET("", h.Employee.ListEmployees)
			employeeRoutes.GET("/search", h.Employee.SearchEmployees)
			employeeRoutes.POST("", h.Employee.CreateEmployee)
			employeeRoutes.GET("/:id", h.Employee.GetEmployee)
			employeeRoutes.PUT("/:id", h.Employee.UpdateEmployee)
			employeeRoutes.PATCH("/:id", h.Employee.PatchEmployee)
			employeeRoutes.DELETE("/:id", h.Employee.DeleteEmployee)

			employeeRoutes.GET("/:id/schedules", h.Employee.ListAssignments)
			employeeRoutes.POST("/:id/schedules", h.Employee.CreateAssignment)
			employeeRoutes.DELETE("/:id/schedules/:assignment_id", h.Employee.DeleteAssignment)
		}

		scheduleRoutes := adminRoutes.Group("/work-schedules")
		{
			scheduleRoutes.GET("", h.WorkSchedule.ListWorkSchedules)
			scheduleRoutes.POST("", h.WorkSchedule.CreateWorkSchedule)
			scheduleRoutes.GET("/:id", h.WorkSchedule.GetWorkSchedule)
			scheduleRoutes.PUT("/:id", h.WorkSchedule.UpdateWorkSchedule)
			scheduleRoutes.DELETE("/:id", h.WorkSchedule.DeleteWorkSchedule)

			scheduleRoutes.POST("/:id/qr", h.Attendance.IssueQRToken)
			scheduleRoutes.GET("/:id/qr.png", h.Attendance.QRCodePNG)
		}

		adminRoutes.GET("/daily-schedules", h.WorkSchedule.ListDailySchedules)
		adminRoutes.GET("/available-schedules", h.WorkSchedule.AvailableSchedules)
		adminRoutes.GET("/attendance", h.Attendance.ListAttendance)
	}
}

// SetupAttendanceRoutes sets up the check-in route for employees and admins.
func SetupAttendanceRoutes(apiGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	attendanceRoutes := apiGroup.Group("/attendance")
	attendanceRoutes.Use(middleware.AuthMiddleware(), middleware.RoleAuthMiddleware(utils.RoleEmployee, utils.RoleAdmin))
	{
		attendanceRoutes.POST("/scan", attendanceHandler.Scan)
	}
}

// SetupEmployeeSelfRoutes sets up the routes an employee uses about themselves.
func SetupEmployeeSelfRoutes(apiGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	employeeRoutes := apiGroup.Group("/employee")
	employeeRoutes.Use(middleware.AuthMiddleware(), middleware.RoleAuthMiddleware(utils.RoleEmployee, utils.RoleAdmin))
	{
		employeeRoutes.GET("/schedule/today", attendanceHandler.TodaySchedule)
		employeeRoutes.GET("/attendance/history", attendanceHandler.History)
	}
}
