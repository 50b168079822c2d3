package handlers

import (
	"context"
	"net/http"

	"attendance_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Ping answers 200 while the database is reachable and 503 otherwise.
func (h *HealthHandler) Ping(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		utils.LogError(err, "Ping: database unreachable")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "Database is unavailable.", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
