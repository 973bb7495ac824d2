package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/metrics"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/planner"
)

// LivePlanner is a remote planner tried before the offline fallback
type LivePlanner interface {
	Plan(ctx context.Context, from, to models.Coordinate, startTime int64) (*models.Itinerary, error)
}

// TripPlannerService answers trip plan requests, preferring the live planner
// when one is configured and degrading to the offline planner otherwise
type TripPlannerService struct {
	planner     *planner.Planner
	destination models.Coordinate
	live        LivePlanner
	liveTimeout time.Duration
	metrics     *metrics.Recorder
	logger      *logrus.Logger
	now         func() time.Time
}

// NewTripPlannerService creates a new trip planner service.
// destination is used when a request does not name one.
func NewTripPlannerService(
	p *planner.Planner,
	destination models.Coordinate,
	recorder *metrics.Recorder,
	logger *logrus.Logger,
) *TripPlannerService {
	return &TripPlannerService{
		planner:     p,
		destination: destination,
		metrics:     recorder,
		logger:      logger,
		now:         time.Now,
	}
}

// WithLivePlanner enables the live planner with a per-request timeout
func (s *TripPlannerService) WithLivePlanner(live LivePlanner, timeout time.Duration) *TripPlannerService {
	s.live = live
	s.liveTimeout = timeout
	return s
}

// WithClock replaces the clock used for requests without a start time
func (s *TripPlannerService) WithClock(now func() time.Time) *TripPlannerService {
	s.now = now
	return s
}

// PlanTrip validates the request and returns an itinerary. Only invalid input
// is an error: live planner failures fall back to the offline planner.
func (s *TripPlannerService) PlanTrip(ctx context.Context, req *models.TripPlanRequest) (*models.TripPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	origin := *req.Origin
	destination := s.destination
	if req.Destination != nil {
		destination = *req.Destination
	}
	startTime := req.GetStartTime(s.now())

	planID := uuid.New().String()
	log := s.logger.WithFields(logrus.Fields{
		"plan_id":     planID,
		"origin":      origin.String(),
		"destination": destination.String(),
		"start_time":  startTime,
	})

	if s.live != nil {
		if it, ok := s.planLive(ctx, log, origin, destination, startTime); ok {
			return &models.TripPlanResponse{PlanID: planID, Source: models.SourceLive, Itinerary: *it}, nil
		}
	}

	begin := time.Now()
	it, err := s.planner.Plan(origin, destination, startTime)
	if err != nil {
		s.observe(models.SourceFallback, metrics.OutcomeError, time.Since(begin))
		return nil, fmt.Errorf("offline planner rejected request: %w", err)
	}
	s.observe(models.SourceFallback, outcome(it), time.Since(begin))

	log.WithFields(logrus.Fields{
		"legs":      len(it.Legs),
		"duration":  it.Duration,
		"uses_rail": it.UsesRail(),
	}).Info("Planned trip with offline planner")

	return &models.TripPlanResponse{PlanID: planID, Source: models.SourceFallback, Itinerary: it}, nil
}

func (s *TripPlannerService) planLive(
	ctx context.Context,
	log *logrus.Entry,
	origin, destination models.Coordinate,
	startTime int64,
) (*models.Itinerary, bool) {
	begin := time.Now()

	liveCtx := ctx
	if s.liveTimeout > 0 {
		var cancel context.CancelFunc
		liveCtx, cancel = context.WithTimeout(ctx, s.liveTimeout)
		defer cancel()
	}

	it, err := s.live.Plan(liveCtx, origin, destination, startTime)
	if err == nil && (it == nil || len(it.Legs) == 0) {
		err = fmt.Errorf("live planner returned an empty itinerary")
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.LivePlannerFailed()
		}
		s.observe(models.SourceLive, metrics.OutcomeError, time.Since(begin))
		log.WithError(err).Warn("Live planner failed, falling back to offline planner")
		return nil, false
	}

	s.observe(models.SourceLive, outcome(*it), time.Since(begin))
	log.WithField("legs", len(it.Legs)).Info("Planned trip with live planner")
	return it, true
}

func (s *TripPlannerService) observe(source models.PlanSource, result string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObservePlan(string(source), result, elapsed)
	}
}

func outcome(it models.Itinerary) string {
	if it.UsesRail() {
		return metrics.OutcomeRail
	}
	return metrics.OutcomeWalkOnly
}
