package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/metrics"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
	"github.com/smarttransit/circuit-trip-planner/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow  = time.Date(2026, 5, 30, 10, 10, 0, 0, time.UTC)
	sagrada  = models.Coordinate{Lat: 41.4036, Lon: 2.1744}
	circuito = models.Coordinate{Lat: 41.5700, Lon: 2.2611}
)

// fakeLivePlanner records calls and returns a canned answer
type fakeLivePlanner struct {
	itinerary *models.Itinerary
	err       error
	delay     time.Duration
	calls     int
	deadline  bool
}

func (f *fakeLivePlanner) Plan(ctx context.Context, from, to models.Coordinate, startTime int64) (*models.Itinerary, error) {
	f.calls++
	_, f.deadline = ctx.Deadline()
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.itinerary, f.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTripPlannerTest(t *testing.T) (*TripPlannerService, *metrics.Recorder) {
	t.Helper()

	n, err := network.Default()
	require.NoError(t, err)

	recorder := metrics.NewRecorder()
	service := NewTripPlannerService(planner.New(n, planner.DefaultOptions()), n.Destination().Location, recorder, testLogger()).
		WithClock(func() time.Time { return testNow })
	return service, recorder
}

// counterValue reads a counter from the recorder's registry by name and labels
func counterValue(t *testing.T, recorder *metrics.Recorder, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func plansTotal(t *testing.T, recorder *metrics.Recorder, source, outcome string) float64 {
	return counterValue(t, recorder, "circuit_planner_trip_plans_total", map[string]string{"source": source, "outcome": outcome})
}

func liveItinerary() *models.Itinerary {
	dep := testNow.UnixMilli()
	arr := dep + 45*60*1000
	return &models.Itinerary{
		Duration:    2700,
		StartTime:   dep,
		EndTime:     arr,
		TransitTime: 2700,
		Legs: []models.Leg{{
			Mode: models.ModeRail,
			From: models.Place{Name: "Sagrada Família", Departure: &dep},
			To:   models.Place{Name: "Circuit", Arrival: &arr},
		}},
	}
}

func TestPlanTrip_Fallback(t *testing.T) {
	service, recorder := setupTripPlannerTest(t)

	resp, err := service.PlanTrip(context.Background(), &models.TripPlanRequest{Origin: &sagrada})
	require.NoError(t, err)

	assert.Equal(t, models.SourceFallback, resp.Source)
	assert.NotEmpty(t, resp.PlanID)
	assert.Equal(t, testNow.UnixMilli(), resp.Itinerary.StartTime, "missing start time defaults to the clock")
	assert.True(t, resp.Itinerary.UsesRail())

	last := resp.Itinerary.Legs[len(resp.Itinerary.Legs)-1]
	assert.Equal(t, circuito, last.To.Coordinate(), "missing destination defaults to the circuit")

	assert.Equal(t, 1.0, plansTotal(t, recorder, "fallback", metrics.OutcomeRail))
}

func TestPlanTrip_ExplicitDestinationAndStart(t *testing.T) {
	service, _ := setupTripPlannerTest(t)
	start := time.Date(2026, 6, 14, 7, 0, 0, 0, time.UTC).UnixMilli()
	destination := models.Coordinate{Lat: 41.5650, Lon: 2.2550}

	resp, err := service.PlanTrip(context.Background(), &models.TripPlanRequest{
		Origin:      &sagrada,
		Destination: &destination,
		StartTime:   &start,
	})
	require.NoError(t, err)

	assert.Equal(t, start, resp.Itinerary.StartTime)
	last := resp.Itinerary.Legs[len(resp.Itinerary.Legs)-1]
	assert.Equal(t, destination, last.To.Coordinate())
}

func TestPlanTrip_InvalidRequest(t *testing.T) {
	service, _ := setupTripPlannerTest(t)
	live := &fakeLivePlanner{itinerary: liveItinerary()}
	service.WithLivePlanner(live, time.Second)

	_, err := service.PlanTrip(context.Background(), &models.TripPlanRequest{Origin: &models.Coordinate{Lat: 120}})

	require.Error(t, err)
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Zero(t, live.calls, "invalid requests never reach the live planner")
}

func TestPlanTrip_LivePlanner(t *testing.T) {
	service, recorder := setupTripPlannerTest(t)
	live := &fakeLivePlanner{itinerary: liveItinerary()}
	service.WithLivePlanner(live, time.Second)

	resp, err := service.PlanTrip(context.Background(), &models.TripPlanRequest{Origin: &sagrada})
	require.NoError(t, err)

	assert.Equal(t, models.SourceLive, resp.Source)
	assert.Equal(t, *liveItinerary(), resp.Itinerary)
	assert.Equal(t, 1, live.calls)
	assert.True(t, live.deadline, "live calls carry a deadline")
	assert.Equal(t, 1.0, plansTotal(t, recorder, "live", metrics.OutcomeRail))
}

func TestPlanTrip_LivePlannerFallback(t *testing.T) {
	tests := []struct {
		name string
		live *fakeLivePlanner
	}{
		{name: "error", live: &fakeLivePlanner{err: errors.New("connection refused")}},
		{name: "timeout", live: &fakeLivePlanner{itinerary: liveItinerary(), delay: time.Second}},
		{name: "nil itinerary", live: &fakeLivePlanner{}},
		{name: "no legs", live: &fakeLivePlanner{itinerary: &models.Itinerary{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, recorder := setupTripPlannerTest(t)
			service.WithLivePlanner(tt.live, 20*time.Millisecond)

			resp, err := service.PlanTrip(context.Background(), &models.TripPlanRequest{Origin: &sagrada})
			require.NoError(t, err)

			assert.Equal(t, models.SourceFallback, resp.Source)
			assert.True(t, resp.Itinerary.UsesRail())
			assert.Equal(t, 1.0, counterValue(t, recorder, "circuit_planner_live_planner_failures_total", nil))
			assert.Equal(t, 1.0, plansTotal(t, recorder, "live", metrics.OutcomeError))
			assert.Equal(t, 1.0, plansTotal(t, recorder, "fallback", metrics.OutcomeRail))
		})
	}
}

func TestPlanTrip_WithoutMetrics(t *testing.T) {
	n, err := network.Default()
	require.NoError(t, err)
	service := NewTripPlannerService(planner.New(n, planner.DefaultOptions()), n.Destination().Location, nil, testLogger()).
		WithLivePlanner(&fakeLivePlanner{err: errors.New("down")}, time.Second)

	resp, err := service.PlanTrip(context.Background(), &models.TripPlanRequest{Origin: &sagrada})
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, resp.Source)
}
