package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and the loaded network
type HealthHandler struct {
	version     string
	source      string
	stations    int
	livePlanner bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, source string, stations int, livePlanner bool) *HealthHandler {
	return &HealthHandler{
		version:     version,
		source:      source,
		stations:    stations,
		livePlanner: livePlanner,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	livePlanner := "disabled"
	if h.livePlanner {
		livePlanner = "enabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"source":       h.source,
		"stations":     h.stations,
		"live_planner": livePlanner,
		"version":      h.version,
		"timestamp":    time.Now().Unix(),
	})
}
