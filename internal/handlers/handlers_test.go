package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
	"github.com/smarttransit/circuit-trip-planner/internal/planner"
	"github.com/smarttransit/circuit-trip-planner/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 30, 10, 10, 0, 0, time.UTC)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	n, err := network.Default()
	require.NoError(t, err)
	p := planner.New(n, planner.DefaultOptions())
	clock := func() time.Time { return testNow }

	trips := NewTripPlanHandler(
		services.NewTripPlannerService(p, n.Destination().Location, nil, logger).WithClock(clock),
		logger,
	)
	stations := NewStationHandler(services.NewStationService(p, logger).WithClock(clock), logger)
	health := NewHealthHandler("test", "embedded", n.Len(), false)

	router := gin.New()
	router.GET("/health", health.Health)
	v1 := router.Group("/api/v1")
	v1.POST("/trips/plan", trips.PlanTrip)
	v1.POST("/trips/plan/geojson", trips.PlanTripGeoJSON)
	v1.GET("/stations", stations.ListStations)
	v1.GET("/stations/:id/departures", stations.GetDepartures)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "embedded", body["source"])
	assert.Equal(t, float64(10), body["stations"])
	assert.Equal(t, "disabled", body["live_planner"])
}

func TestPlanTrip(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/trips/plan", `{"origin":{"lat":41.4036,"lon":2.1744}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.TripPlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.SourceFallback, resp.Source)
	assert.NotEmpty(t, resp.PlanID)
	assert.Equal(t, testNow.UnixMilli(), resp.Itinerary.StartTime)
	require.NotEmpty(t, resp.Itinerary.Legs)
	assert.True(t, resp.Itinerary.UsesRail())
	assert.Contains(t, w.Body.String(), `"transitTime"`)
}

func TestPlanTrip_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "malformed json", body: `{"origin":`, message: "Invalid request format"},
		{name: "missing origin", body: `{"startTime":1780000000000}`, message: "Invalid request format"},
		{name: "latitude out of range", body: `{"origin":{"lat":91,"lon":2.17}}`, message: "origin: latitude"},
		{name: "negative start time", body: `{"origin":{"lat":41.4,"lon":2.17},"startTime":-1}`, message: "startTime"},
	}

	router := setupTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/trips/plan", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body["status"])
			assert.Contains(t, body["message"], tt.message)
		})
	}
}

func TestPlanTripGeoJSON(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/trips/plan/geojson", `{"origin":{"lat":41.4036,"lon":2.1744}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var body struct {
		Type     string            `json:"type"`
		PlanID   string            `json:"planId"`
		Source   string            `json:"source"`
		Features []json.RawMessage `json:"features"`
		BBox     []float64         `json:"bbox"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FeatureCollection", body.Type)
	assert.NotEmpty(t, body.PlanID)
	assert.Equal(t, "fallback", body.Source)
	assert.GreaterOrEqual(t, len(body.Features), 3, "origin, at least one leg, destination")
	assert.Len(t, body.BBox, 4)
}

func TestListStations(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/stations", "")
	require.Equal(t, http.StatusOK, w.Code)

	var info models.NetworkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Len(t, info.Stations, 10)
	assert.Equal(t, "montmelo", info.Terminal.ID)
	assert.Equal(t, []int{8, 38}, info.DepartureMinutes)
}

func TestGetDepartures(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("Success", func(t *testing.T) {
		after := time.Date(2026, 5, 30, 10, 10, 0, 0, time.UTC).UnixMilli()
		w := doRequest(router, http.MethodGet, "/api/v1/stations/sants/departures?limit=2&after="+strconv.FormatInt(after, 10), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp models.DeparturesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sants", resp.Station.ID)
		require.Len(t, resp.Departures, 2)
		assert.Equal(t, time.Date(2026, 5, 30, 10, 38, 0, 0, time.UTC).UnixMilli(), resp.Departures[0].Time)
		assert.Equal(t, time.Date(2026, 5, 30, 11, 8, 0, 0, time.UTC).UnixMilli(), resp.Departures[1].Time)
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "unknown station", path: "/api/v1/stations/granollers/departures", status: http.StatusNotFound},
		{name: "limit not a number", path: "/api/v1/stations/sants/departures?limit=abc", status: http.StatusBadRequest},
		{name: "limit too large", path: "/api/v1/stations/sants/departures?limit=100", status: http.StatusBadRequest},
		{name: "after not a number", path: "/api/v1/stations/sants/departures?after=tomorrow", status: http.StatusBadRequest},
		{name: "negative after", path: "/api/v1/stations/sants/departures?after=-10", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
