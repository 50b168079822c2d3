package handlers

import (
	"net/http"

	"attendance_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// WorkScheduleHandler holds the work schedule service.
type WorkScheduleHandler struct {
	scheduleService services.WorkScheduleService
}

// NewWorkScheduleHandler creates a new WorkScheduleHandler.
func NewWorkScheduleHandler(ws services.WorkScheduleService) *WorkScheduleHandler {
	return &WorkScheduleHandler{scheduleService: ws}
}

func (h *WorkScheduleHandler) ListWorkSchedules(c *gin.Context) {
	shifts, err := h.scheduleService.ListShifts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "ListWorkSchedules: Error from scheduleService.ListShifts", "Failed to fetch work schedules.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shifts})
}

// GetWorkSchedule returns a shift with the number of employees assigned to it.
func (h *WorkScheduleHandler) GetWorkSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.scheduleService.GetShift(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetWorkSchedule: Error from scheduleService.GetShift", "Failed to fetch work schedule.")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *WorkScheduleHandler) CreateWorkSchedule(c *gin.Context) {
	var req services.WorkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateWorkSchedule")
		return
	}

	shift, err := h.scheduleService.CreateShift(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateWorkSchedule: Error from scheduleService.CreateShift", "Failed to create work schedule.")
		return
	}
	c.JSON(http.StatusCreated, shift)
}

func (h *WorkScheduleHandler) UpdateWorkSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.WorkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateWorkSchedule")
		return
	}

	shift, err := h.scheduleService.UpdateShift(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateWorkSchedule: Error from scheduleService.UpdateShift", "Failed to update work schedule.")
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *WorkScheduleHandler) DeleteWorkSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.scheduleService.DeleteShift(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteWorkSchedule: Error from scheduleService.DeleteShift", "Failed to delete work schedule.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkScheduleHandler) ListDailySchedules(c *gin.Context) {
	days, err := h.scheduleService.ListDailySchedules(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "ListDailySchedules: Error from scheduleService.ListDailySchedules", "Failed to fetch daily schedules.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": days})
}

// AvailableSchedules lists every weekday and shift, for assignment pickers.
func (h *WorkScheduleHandler) AvailableSchedules(c *gin.Context) {
	available, err := h.scheduleService.AvailableSchedules(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "AvailableSchedules: Error from scheduleService.AvailableSchedules", "Failed to fetch schedules.")
		return
	}
	c.JSON(http.StatusOK, available)
}
