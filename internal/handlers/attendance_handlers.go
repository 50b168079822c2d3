package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"attendance_backend/internal/middleware"
	"attendance_backend/internal/services"
	"attendance_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

// AttendanceHandler serves QR issuance, check-in scans and attendance reads.
type AttendanceHandler struct {
	qrService         services.QRAttendanceService
	directory         services.ScheduleDirectory
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(qs services.QRAttendanceService, sd services.ScheduleDirectory, as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{qrService: qs, directory: sd, attendanceService: as}
}

// IssueQRToken mints a fresh check-in token for the shift in the path.
func (h *AttendanceHandler) IssueQRToken(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.qrService.IssueToken(c.Request.Context(), shiftID)
	if err != nil {
		respondServiceError(c, err, "IssueQRToken: Error from qrService.IssueToken", "Failed to generate QR token.")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, resp)
}

// QRCodePNG mints a token and renders it as a QR image for display at the entrance.
func (h *AttendanceHandler) QRCodePNG(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultQRSize)))
	if err != nil || size < minQRSize || size > maxQRSize {
		utils.RespondValidationFailed(c, "size must be between 128 and 1024")
		return
	}

	resp, err := h.qrService.IssueToken(c.Request.Context(), shiftID)
	if err != nil {
		respondServiceError(c, err, "QRCodePNG: Error from qrService.IssueToken", "Failed to generate QR token.")
		return
	}

	png, err := qrcode.Encode(resp.QRToken, qrcode.Medium, size)
	if err != nil {
		utils.LogError(err, "QRCodePNG: Failed to encode QR image")
		utils.RespondInternalError(c, "Failed to render QR code.")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-QR-Expires-In", strconv.Itoa(resp.ExpiresIn))
	c.Data(http.StatusOK, "image/png", png)
}

// Scan redeems a QR token for a check-in. Employees may only check in as
// themselves; when employee_id is omitted it defaults to the caller.
func (h *AttendanceHandler) Scan(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	// An empty body is a request with no fields; Scan reports it as such.
	var req services.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err, "Scan")
		return
	}

	if principal.Role == utils.RoleEmployee {
		if req.EmployeeID == 0 {
			req.EmployeeID = principal.ID
		}
		if req.EmployeeID != principal.ID {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Employees can only check in for themselves.", ""))
			return
		}
	}

	result, err := h.qrService.Scan(c.Request.Context(), req)
	if err != nil {
		var rejection *services.ScanRejection
		if errors.As(err, &rejection) {
			utils.RespondWithError(c, utils.NewAPIError(rejection.StatusCode(), rejection.Reason, rejection.Message, ""))
			return
		}
		utils.LogError(err, "Scan: Error from qrService.Scan")
		utils.RespondInternalError(c, "Failed to record attendance.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Check-in successful. Status: " + result.Status,
		"attendance": result,
	})
}

// targetEmployee resolves whose data an employee-scoped route reads: the
// caller for employees, ?employee_id= for admins.
func targetEmployee(c *gin.Context) (int64, bool) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return 0, false
	}
	if principal.Role != utils.RoleAdmin {
		return principal.ID, true
	}

	raw := strings.TrimSpace(c.Query("employee_id"))
	id, err := utils.StrToInt64(raw)
	if err != nil || id <= 0 {
		utils.RespondValidationFailed(c, "employee_id query parameter is required for admins")
		return 0, false
	}
	return id, true
}

// TodaySchedule reports the shift the employee works today, if any.
func (h *AttendanceHandler) TodaySchedule(c *gin.Context) {
	employeeID, ok := targetEmployee(c)
	if !ok {
		return
	}

	resp, err := h.directory.ShiftForEmployeeToday(c.Request.Context(), employeeID)
	if err != nil {
		respondServiceError(c, err, "TodaySchedule: Error from directory.ShiftForEmployeeToday", "Failed to fetch today's schedule.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) History(c *gin.Context) {
	employeeID, ok := targetEmployee(c)
	if !ok {
		return
	}
	page, pageSize := parsePaging(c)

	list, total, err := h.attendanceService.History(c.Request.Context(), employeeID, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "History: Error from attendanceService.History", "Failed to fetch attendance history.")
		return
	}
	paginated(c, list, total, page, pageSize)
}

// ListAttendance is the admin view of all check-ins, optionally for one date.
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	page, pageSize := parsePaging(c)

	var date *string
	if d := strings.TrimSpace(c.Query("date")); d != "" {
		date = &d
	}

	list, total, err := h.attendanceService.ListAttendance(c.Request.Context(), date, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "ListAttendance: Error from attendanceService.ListAttendance", "Failed to fetch attendance.")
		return
	}
	paginated(c, list, total, page, pageSize)
}
