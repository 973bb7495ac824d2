package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
	"github.com/smarttransit/circuit-trip-planner/internal/planner"
)

const (
	defaultDeparturesLimit = 5
	maxDeparturesLimit     = 24
)

// StationService exposes the network model and its timetable
type StationService struct {
	network  *network.Network
	schedule planner.Schedule
	logger   *logrus.Logger
	now      func() time.Time
}

// NewStationService creates a new station service
func NewStationService(p *planner.Planner, logger *logrus.Logger) *StationService {
	return &StationService{
		network:  p.Network(),
		schedule: p.Schedule(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock used when no start time is given
func (s *StationService) WithClock(now func() time.Time) *StationService {
	s.now = now
	return s
}

// GetNetwork describes the loaded network
func (s *StationService) GetNetwork() *models.NetworkInfo {
	dest := s.network.Destination()
	info := &models.NetworkInfo{
		Line:     s.network.Line(),
		Terminal: s.network.Terminal(),
		Destination: models.Place{
			Name: dest.Name,
			Lat:  dest.Location.Lat,
			Lon:  dest.Location.Lon,
		},
		DepartureMinutes: s.network.DepartureMinutes(),
		Stations:         s.network.Stations(),
	}
	if ref, ok := s.network.Reference(); ok {
		info.Reference = &ref
	}
	return info
}

// GetDepartures lists the next departures from a station. after is epoch ms;
// nil means now. limit 0 selects the default.
func (s *StationService) GetDepartures(stationID string, after *int64, limit int) (*models.DeparturesResponse, error) {
	if limit < 0 || limit > maxDeparturesLimit {
		return nil, models.ErrInvalidInput("limit must be between 1 and 24")
	}
	if limit == 0 {
		limit = defaultDeparturesLimit
	}

	station, err := s.network.Station(stationID)
	if err != nil {
		return nil, err
	}

	notBefore := s.now().UnixMilli()
	if after != nil {
		if *after < 0 {
			return nil, models.ErrInvalidInput("after must be a positive epoch timestamp in milliseconds")
		}
		notBefore = *after
	}

	s.logger.WithFields(logrus.Fields{
		"station_id": stationID,
		"after":      notBefore,
		"limit":      limit,
	}).Debug("Listing departures")

	return &models.DeparturesResponse{
		Station:    station,
		Departures: s.schedule.Departures(station, notBefore, limit),
	}, nil
}
