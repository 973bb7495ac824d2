package database

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
)

// StationRepository reads the station list from Postgres. It is queried once
// at startup; the planner never touches the database.
type StationRepository struct {
	db DB
}

// NewStationRepository creates a new station repository
func NewStationRepository(db DB) *StationRepository {
	return &StationRepository{db: db}
}

// stationRow is the flat shape of a stations table row
type stationRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Latitude          float64        `db:"latitude"`
	Longitude         float64        `db:"longitude"`
	Lines             pq.StringArray `db:"lines"`
	Category          string         `db:"category"`
	TimeOffsetMinutes int            `db:"time_offset_minutes"`
	IsReference       bool           `db:"is_reference"`
	IsTerminal        bool           `db:"is_terminal"`
}

func (r stationRow) toModel() models.Station {
	return models.Station{
		ID:                r.ID,
		Name:              r.Name,
		Location:          models.Coordinate{Lat: r.Latitude, Lon: r.Longitude},
		Lines:             []string(r.Lines),
		Category:          models.StationCategory(r.Category),
		TimeOffsetMinutes: r.TimeOffsetMinutes,
	}
}

// StationSet is the result of reading the stations table
type StationSet struct {
	Stations  []models.Station
	Reference string
	Terminal  string
}

// ListStations returns every active station ordered by id, plus the ids
// flagged as reference and terminal
func (r *StationRepository) ListStations() (*StationSet, error) {
	query := `
		SELECT
			id,
			name,
			latitude,
			longitude,
			COALESCE(lines, '{}') AS lines,
			category,
			time_offset_minutes,
			is_reference,
			is_terminal
		FROM stations
		WHERE is_active = true
		ORDER BY id
	`

	var rows []stationRow
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}

	set := &StationSet{Stations: make([]models.Station, 0, len(rows))}
	for _, row := range rows {
		if row.IsTerminal {
			if set.Terminal != "" {
				return nil, fmt.Errorf("stations %s and %s are both flagged as terminal", set.Terminal, row.ID)
			}
			set.Terminal = row.ID
		}
		if row.IsReference {
			if set.Reference != "" {
				return nil, fmt.Errorf("stations %s and %s are both flagged as reference", set.Reference, row.ID)
			}
			set.Reference = row.ID
		}
		set.Stations = append(set.Stations, row.toModel())
	}

	return set, nil
}

// LoadDefinition replaces the stations of base with the database contents.
// Line, shuttle and destination metadata stay as in base.
func (r *StationRepository) LoadDefinition(base network.Definition) (network.Definition, error) {
	set, err := r.ListStations()
	if err != nil {
		return network.Definition{}, err
	}
	if len(set.Stations) == 0 {
		return network.Definition{}, fmt.Errorf("stations table is empty")
	}

	def := base
	def.Stations = set.Stations
	def.Reference = set.Reference
	if set.Terminal != "" {
		def.Terminal = set.Terminal
	}
	return def, nil
}
