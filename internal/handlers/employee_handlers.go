package handlers

import (
	"net/http"
	"strings"

	"attendance_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler holds the employee service.
type EmployeeHandler struct {
	employeeService services.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(es services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: es}
}

// ListEmployees handles fetching employees with pagination and an optional search term.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	h.list(c, c.Query("search"))
}

// SearchEmployees is ListEmployees keyed on ?q=.
func (h *EmployeeHandler) SearchEmployees(c *gin.Context) {
	h.list(c, c.Query("q"))
}

func (h *EmployeeHandler) list(c *gin.Context, searchTerm string) {
	page, pageSize := parsePaging(c)

	var pSearchTerm *string
	if s := strings.TrimSpace(searchTerm); s != "" {
		pSearchTerm = &s
	}

	employees, total, err := h.employeeService.ListEmployees(c.Request.Context(), page, pageSize, pSearchTerm)
	if err != nil {
		respondServiceError(c, err, "ListEmployees: Error from employeeService.ListEmployees", "Failed to fetch employees.")
		return
	}
	paginated(c, employees, total, page, pageSize)
}

// GetEmployee returns one employee with their schedule assignments.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.employeeService.GetEmployee(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetEmployee: Error from employeeService.GetEmployee", "Failed to fetch employee.")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateEmployee")
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateEmployee: Error from employeeService.CreateEmployee", "Failed to create employee.")
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee handles PUT, which replaces every profile field.
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	h.update(c, false)
}

// PatchEmployee handles PATCH, which only touches the fields sent.
func (h *EmployeeHandler) PatchEmployee(c *gin.Context) {
	h.update(c, true)
}

func (h *EmployeeHandler) update(c *gin.Context, partial bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateEmployee")
		return
	}

	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), id, req, partial)
	if err != nil {
		respondServiceError(c, err, "UpdateEmployee: Error from employeeService.UpdateEmployee", "Failed to update employee.")
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.employeeService.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteEmployee: Error from employeeService.DeleteEmployee", "Failed to delete employee.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EmployeeHandler) ListAssignments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	views, err := h.employeeService.ListAssignments(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "ListAssignments: Error from employeeService.ListAssignments", "Failed to fetch schedules.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (h *EmployeeHandler) CreateAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateAssignment")
		return
	}

	view, err := h.employeeService.AssignSchedule(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "CreateAssignment: Error from employeeService.AssignSchedule", "Failed to assign schedule.")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *EmployeeHandler) DeleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignment_id")
	if !ok {
		return
	}

	if err := h.employeeService.RemoveAssignment(c.Request.Context(), id, assignmentID); err != nil {
		respondServiceError(c, err, "DeleteAssignment: Error from employeeService.RemoveAssignment", "Failed to remove schedule.")
		return
	}
	c.Status(http.StatusNoContent)
}
