package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/middleware"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/services"
	"github.com/smarttransit/circuit-trip-planner/pkg/tripgeo"
)

// TripPlanHandler handles HTTP requests for trip planning
type TripPlanHandler struct {
	service *services.TripPlannerService
	logger  *logrus.Logger
}

// NewTripPlanHandler creates a new trip plan handler
func NewTripPlanHandler(service *services.TripPlannerService, logger *logrus.Logger) *TripPlanHandler {
	return &TripPlanHandler{
		service: service,
		logger:  logger,
	}
}

// PlanTrip handles POST /api/v1/trips/plan
// @Summary Plan a trip to the circuit
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body models.TripPlanRequest true "Origin, optional destination and start time"
// @Success 200 {object} models.TripPlanResponse
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/trips/plan [post]
func (h *TripPlanHandler) PlanTrip(c *gin.Context) {
	resp, ok := h.plan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlanTripGeoJSON handles POST /api/v1/trips/plan/geojson
// @Summary Plan a trip and return it as a GeoJSON FeatureCollection
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body models.TripPlanRequest true "Origin, optional destination and start time"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /api/v1/trips/plan/geojson [post]
func (h *TripPlanHandler) PlanTripGeoJSON(c *gin.Context) {
	resp, ok := h.plan(c)
	if !ok {
		return
	}

	fc := tripgeo.FeatureCollection(resp.Itinerary)
	fc.ExtraMembers["planId"] = resp.PlanID
	fc.ExtraMembers["source"] = resp.Source

	body, err := fc.MarshalJSON()
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode itinerary as GeoJSON")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to encode itinerary",
		})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}

// plan binds the request and runs the planner, writing the error response itself
func (h *TripPlanHandler) plan(c *gin.Context) (*models.TripPlanResponse, bool) {
	var req models.TripPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid trip plan request - JSON parsing failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request format",
			"error":   err.Error(),
		})
		return nil, false
	}

	resp, err := h.service.PlanTrip(c.Request.Context(), &req)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": vErr.Message,
			})
			return nil, false
		}

		h.logger.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("Trip planning failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to plan trip. Please try again later.",
		})
		return nil, false
	}
	return resp, true
}
