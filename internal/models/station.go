package models

import "fmt"

// StationCategory classifies a node of the network model
type StationCategory string

const (
	CategoryRail        StationCategory = "rail"
	CategoryTransitNode StationCategory = "generic-transit-node"
)

// Valid reports whether the category is one of the known values
func (c StationCategory) Valid() bool {
	switch c {
	case CategoryRail, CategoryTransitNode:
		return true
	}
	return false
}

// Station represents a stop on the supported regional rail line.
// TimeOffsetMinutes is how many minutes this station's departure is offset from
// the reference terminal's departure on the same service (signed).
type Station struct {
	ID                string          `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	Location          Coordinate      `json:"location" yaml:"location"`
	Lines             []string        `json:"lines" yaml:"lines"`
	Category          StationCategory `json:"category" yaml:"category"`
	TimeOffsetMinutes int             `json:"time_offset_minutes" yaml:"time_offset_minutes"`
}

// Validate checks that a station record is usable by the planner
func (s *Station) Validate() error {
	if s.ID == "" {
		return ErrInvalidInput("station id is required")
	}
	if s.Name == "" {
		return ErrInvalidInput(fmt.Sprintf("station %s: name is required", s.ID))
	}
	if !s.Category.Valid() {
		return ErrInvalidInput(fmt.Sprintf("station %s: unknown category %q", s.ID, s.Category))
	}
	if err := s.Location.Validate(); err != nil {
		return ErrInvalidInput(fmt.Sprintf("station %s: %s", s.ID, err.Error()))
	}
	return nil
}

// Line describes the route metadata attached to legs (rail line, shuttle, metro access)
type Line struct {
	ID        string `json:"id" yaml:"id"`
	ShortName string `json:"short_name" yaml:"short_name"`
	LongName  string `json:"long_name" yaml:"long_name"`
	Color     string `json:"color,omitempty" yaml:"color"`
}

// ScheduledDeparture is a computed departure from a station. Not cached.
type ScheduledDeparture struct {
	Time        int64  `json:"time"` // epoch milliseconds
	Destination string `json:"destination"`
}

// NetworkInfo describes the loaded network for API clients
type NetworkInfo struct {
	Line             Line      `json:"line"`
	Reference        *Station  `json:"reference,omitempty"`
	Terminal         Station   `json:"terminal"`
	Destination      Place     `json:"destination"`
	DepartureMinutes []int     `json:"departure_minutes"`
	Stations         []Station `json:"stations"`
}

// DeparturesResponse lists upcoming departures from one station
type DeparturesResponse struct {
	Station    Station              `json:"station"`
	Departures []ScheduledDeparture `json:"departures"`
}
