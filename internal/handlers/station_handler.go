package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
	"github.com/smarttransit/circuit-trip-planner/internal/services"
)

// StationHandler handles HTTP requests for the station network
type StationHandler struct {
	service *services.StationService
	logger  *logrus.Logger
}

// NewStationHandler creates a new station handler
func NewStationHandler(service *services.StationService, logger *logrus.Logger) *StationHandler {
	return &StationHandler{
		service: service,
		logger:  logger,
	}
}

// ListStations handles GET /api/v1/stations
// @Summary Describe the rail network serving the circuit
// @Tags Stations
// @Produce json
// @Success 200 {object} models.NetworkInfo
// @Router /api/v1/stations [get]
func (h *StationHandler) ListStations(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetNetwork())
}

// GetDepartures handles GET /api/v1/stations/:id/departures
// @Summary List upcoming departures from a station
// @Tags Stations
// @Produce json
// @Param id path string true "Station ID"
// @Param after query int false "Epoch milliseconds, defaults to now"
// @Param limit query int false "Number of departures (1-24, default 5)"
// @Success 200 {object} models.DeparturesResponse
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Unknown station"
// @Router /api/v1/stations/{id}/departures [get]
func (h *StationHandler) GetDepartures(c *gin.Context) {
	var after *int64
	if raw := c.Query("after"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "after must be an epoch timestamp in milliseconds",
			})
			return
		}
		after = &v
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "limit must be an integer",
			})
			return
		}
		limit = v
	}

	resp, err := h.service.GetDepartures(c.Param("id"), after, limit)
	if err != nil {
		var vErr *models.ValidationError
		switch {
		case errors.Is(err, network.ErrUnknownStation):
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": vErr.Message,
			})
		default:
			h.logger.WithError(err).Error("Failed to list departures")
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to list departures",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
