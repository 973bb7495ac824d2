package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/config"
	"github.com/smarttransit/circuit-trip-planner/internal/database"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
	"github.com/smarttransit/circuit-trip-planner/internal/planner"
)

// StationSource replaces the stations of a base definition, e.g. from Postgres
type StationSource interface {
	LoadDefinition(base network.Definition) (network.Definition, error)
}

// LoadNetwork builds the network from the configured source. stations is only
// consulted for the database source and may be nil otherwise.
func LoadNetwork(cfg *config.Config, stations StationSource, logger *logrus.Logger) (*network.Network, error) {
	def, err := network.DefaultDefinition()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded network: %w", err)
	}

	switch cfg.Network.Source {
	case config.NetworkSourceFile:
		def, err = network.LoadDefinitionFile(cfg.Network.StationsFile)
		if err != nil {
			return nil, err
		}
	case config.NetworkSourceDatabase:
		if stations == nil {
			return nil, fmt.Errorf("database network source requires a station repository")
		}
		def, err = stations.LoadDefinition(def)
		if err != nil {
			return nil, fmt.Errorf("failed to load stations from database: %w", err)
		}
	}

	if cfg.Planner.HasDestination {
		def.Destination.Location = models.Coordinate{Lat: cfg.Planner.DestinationLat, Lon: cfg.Planner.DestinationLon}
	}
	if cfg.Planner.DestinationName != "" {
		def.Destination.Name = cfg.Planner.DestinationName
	}

	n, err := network.New(def)
	if err != nil {
		return nil, fmt.Errorf("invalid network definition: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"source":      cfg.Network.Source,
		"stations":    n.Len(),
		"terminal":    n.Terminal().ID,
		"destination": n.Destination().Name,
	}).Info("Network loaded")

	return n, nil
}

// PlannerOptions maps the configuration onto the planner cost model
func PlannerOptions(cfg *config.Config) (planner.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return planner.Options{}, err
	}

	shuttle, err := planner.ShuttlePolicyFor(cfg.Planner.ShuttleMode, loc, cfg.Planner.ShuttleEventDates)
	if err != nil {
		return planner.Options{}, err
	}

	opts := planner.DefaultOptions()
	opts.WalkSpeedMPS = cfg.Planner.WalkSpeedMPS
	opts.TransitSpeedMPS = cfg.Planner.TransitSpeedMPS
	opts.TransitThresholdMeters = cfg.Planner.TransitThresholdMeters
	opts.Location = loc
	opts.Shuttle = shuttle
	return opts, nil
}

// NewPlanner loads the network and builds the offline planner
func NewPlanner(cfg *config.Config, stations StationSource, logger *logrus.Logger) (*planner.Planner, error) {
	n, err := LoadNetwork(cfg, stations, logger)
	if err != nil {
		return nil, err
	}
	opts, err := PlannerOptions(cfg)
	if err != nil {
		return nil, err
	}
	return planner.New(n, opts), nil
}

// BuildPlanner is NewPlanner with the station repository opened on demand.
// The connection only lives while the stations are read.
func BuildPlanner(cfg *config.Config, logger *logrus.Logger) (*planner.Planner, error) {
	if cfg.Network.Source != config.NetworkSourceDatabase {
		return NewPlanner(cfg, nil, logger)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return NewPlanner(cfg, database.NewStationRepository(db), logger)
}
