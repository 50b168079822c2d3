package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"attendance_backend/internal/services"
	"attendance_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive int64 path parameter, responding 400 when it is malformed.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

func parsePaging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(services.DefaultPageSize)))
	return services.NormalizePaging(page, pageSize)
}

func respondBindError(c *gin.Context, err error, where string) {
	utils.LogError(err, where+": Failed to bind JSON")
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
}

// respondServiceError maps service sentinels onto the API error envelope.
// Anything unrecognised is logged and reported as a 500 with fallback as message.
func respondServiceError(c *gin.Context, err error, where, fallback string) {
	var apiErr *utils.APIError
	switch {
	case errors.Is(err, services.ErrValidation):
		apiErr = utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed.", err.Error())
	case errors.Is(err, services.ErrEmployeeNotFound):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Employee not found.", err.Error())
	case errors.Is(err, services.ErrShiftNotFound):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Work schedule not found.", err.Error())
	case errors.Is(err, services.ErrDailyScheduleNotFound):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Daily schedule not found.", err.Error())
	case errors.Is(err, services.ErrAssignmentNotFound):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Schedule assignment not found.", err.Error())
	case errors.Is(err, services.ErrAccountNotFound):
		apiErr = utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Account not found.", err.Error())
	case errors.Is(err, services.ErrNIKExists):
		apiErr = utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "NIK already exists.", err.Error())
	case errors.Is(err, services.ErrEmailExists):
		apiErr = utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error())
	case errors.Is(err, services.ErrAssignmentExists):
		apiErr = utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Schedule already assigned for this day.", err.Error())
	case errors.Is(err, services.ErrScheduleNameExists):
		apiErr = utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Work schedule name already exists.", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apiErr = utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", "")
	case errors.Is(err, services.ErrInvalidRefreshToken):
		apiErr = utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired refresh token.", "")
	default:
		utils.LogError(err, where)
		utils.RespondInternalError(c, fallback)
		return
	}
	utils.LogDebug(where+": request rejected", map[string]interface{}{"error": err.Error()})
	utils.RespondWithError(c, apiErr)
}

func paginated(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
