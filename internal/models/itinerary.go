package models

import (
	"fmt"
	"strings"
)

// Mode is the closed set of transport modes a leg can use
type Mode uint8

const (
	ModeWalk Mode = iota + 1
	ModeBus
	ModeRail
	ModeSubway
)

// String returns the wire name of the mode
func (m Mode) String() string {
	switch m {
	case ModeWalk:
		return "WALK"
	case ModeBus:
		return "BUS"
	case ModeRail:
		return "RAIL"
	case ModeSubway:
		return "SUBWAY"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode converts a wire name into a Mode. Unknown names are an error.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WALK":
		return ModeWalk, nil
	case "BUS":
		return ModeBus, nil
	case "RAIL":
		return ModeRail, nil
	case "SUBWAY":
		return ModeSubway, nil
	}
	return 0, fmt.Errorf("unknown transport mode %q", s)
}

// IsWalk reports whether time spent on this mode counts as walking time
func (m Mode) IsWalk() bool {
	return m == ModeWalk
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeWalk, ModeBus, ModeRail, ModeSubway:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("cannot marshal invalid transport mode %d", uint8(m))
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Place is a leg endpoint. Departure and Arrival are epoch ms and optional,
// since pass-through points do not always carry both.
type Place struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Departure *int64  `json:"departure,omitempty"`
	Arrival   *int64  `json:"arrival,omitempty"`
}

// Coordinate returns the position of the place
func (p Place) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// Leg is one movement in a single mode
type Leg struct {
	Mode           Mode     `json:"mode"`
	RouteID        *string  `json:"routeId,omitempty"`
	RouteShortName *string  `json:"routeShortName,omitempty"`
	RouteLongName  *string  `json:"routeLongName,omitempty"`
	RouteColor     *string  `json:"routeColor,omitempty"`
	From           Place    `json:"from"`
	To             Place    `json:"to"`
	RealTime       bool     `json:"realTime"`
	Distance       *float64 `json:"distance,omitempty"` // meters
	LegGeometry    *string  `json:"legGeometry,omitempty"`
}

// WithRoute copies the line metadata onto the leg
func (l *Leg) WithRoute(line Line) {
	l.RouteID = optionalString(line.ID)
	l.RouteShortName = optionalString(line.ShortName)
	l.RouteLongName = optionalString(line.LongName)
	l.RouteColor = optionalString(line.Color)
}

// DurationMillis returns the scheduled time on board/on foot when both endpoints carry times
func (l Leg) DurationMillis() (int64, bool) {
	if l.From.Departure == nil || l.To.Arrival == nil {
		return 0, false
	}
	return *l.To.Arrival - *l.From.Departure, true
}

// Itinerary is an ordered sequence of legs with aggregated timing.
// Duration, WalkTime and TransitTime are seconds, StartTime and EndTime epoch ms.
type Itinerary struct {
	Duration    int64 `json:"duration"`
	StartTime   int64 `json:"startTime"`
	EndTime     int64 `json:"endTime"`
	WalkTime    int64 `json:"walkTime"`
	TransitTime int64 `json:"transitTime"`
	Legs        []Leg `json:"legs"`
}

// UsesRail reports whether any leg rides the scheduled train
func (it Itinerary) UsesRail() bool {
	for _, leg := range it.Legs {
		if leg.Mode == ModeRail {
			return true
		}
	}
	return false
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
