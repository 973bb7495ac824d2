// Package planner builds offline itineraries to the circuit from the static
// network model: access legs to the best entry station, the scheduled regional
// train, and the last mile by shuttle or on foot.
//
// A Planner holds no mutable state. Its methods never read the wall clock and
// are safe for concurrent use.
package planner

import (
	"fmt"
	"time"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
)

const (
	originName      = "Origin"
	destinationName = "Destination"
	transitStopName = "Transit stop"
	shuttleStopName = "Shuttle stop"
)

// Planner is the offline fallback trip planner
type Planner struct {
	network  *network.Network
	schedule Schedule
	opts     Options
}

// New creates a planner over a network. Unset options fall back to DefaultOptions.
func New(n *network.Network, opts Options) *Planner {
	opts = opts.withDefaults()
	return &Planner{
		network:  n,
		schedule: NewSchedule(n.DepartureMinutes(), opts.Location, n.Terminal().Name),
		opts:     opts,
	}
}

// Network returns the network model the planner was built on
func (p *Planner) Network() *network.Network {
	return p.network
}

// Schedule returns the timetable calculator
func (p *Planner) Schedule() Schedule {
	return p.schedule
}

// Plan validates both coordinates and builds the itinerary. Invalid input is
// the only error; planning itself always produces an itinerary.
func (p *Planner) Plan(origin, destination models.Coordinate, startTime int64) (models.Itinerary, error) {
	if err := origin.Validate(); err != nil {
		return models.Itinerary{}, fmt.Errorf("invalid origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return models.Itinerary{}, fmt.Errorf("invalid destination: %w", err)
	}
	return p.BuildItinerary(origin, destination, startTime), nil
}

// BuildItinerary assembles access legs, the rail leg and the last mile.
// startTime is truncated to whole seconds so every timestamp in the result is
// second aligned and EndTime == StartTime + Duration*1000 holds exactly.
func (p *Planner) BuildItinerary(origin, destination models.Coordinate, startTime int64) models.Itinerary {
	startTime = truncateToSecond(startTime)

	path := p.SelectBestStation(origin, startTime)
	if path.Station == nil {
		return p.WalkDirect(origin, destination, startTime)
	}

	station := *path.Station
	terminal := p.network.Terminal()
	dep := p.schedule.NextDeparture(station, path.ArrivalAt)
	arrival := dep.Time + rideDuration(station, terminal).Milliseconds()

	legs := make([]models.Leg, 0, len(path.AccessLegs)+3)
	legs = append(legs, path.AccessLegs...)

	rail := models.Leg{
		Mode: models.ModeRail,
		From: models.Place{
			Name:      station.Name,
			Lat:       station.Location.Lat,
			Lon:       station.Location.Lon,
			Arrival:   at(path.ArrivalAt),
			Departure: at(dep.Time),
		},
		To: models.Place{
			Name:    terminal.Name,
			Lat:     terminal.Location.Lat,
			Lon:     terminal.Location.Lon,
			Arrival: at(arrival),
		},
		RealTime: true,
		Distance: meters(distanceMeters(station.Location, terminal.Location)),
	}
	rail.WithRoute(p.network.Line())
	legs = append(legs, rail)

	legs = append(legs, p.lastMile(terminal, destination, arrival)...)

	return summarize(startTime, legs)
}

// rideDuration models travel time from the static offsets alone. Stations
// sharing the terminal's offset still ride for one minute so the rail leg
// always arrives after it departs.
func rideDuration(from, terminal models.Station) time.Duration {
	minutes := terminal.TimeOffsetMinutes - from.TimeOffsetMinutes
	if minutes < 0 {
		minutes = -minutes
	}
	if minutes == 0 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}

func (p *Planner) lastMile(terminal models.Station, destination models.Coordinate, arrival int64) []models.Leg {
	dest := models.Place{Name: p.destinationName(destination), Lat: destination.Lat, Lon: destination.Lon}
	from := models.Place{
		Name:      terminal.Name,
		Lat:       terminal.Location.Lat,
		Lon:       terminal.Location.Lon,
		Departure: at(arrival),
	}

	if !p.opts.Shuttle(time.UnixMilli(arrival).In(p.opts.Location)) {
		d := distanceMeters(terminal.Location, destination)
		dest.Arrival = at(arrival + ms(travelSeconds(d, p.opts.WalkSpeedMPS)))
		return []models.Leg{{
			Mode:     models.ModeWalk,
			From:     from,
			To:       dest,
			Distance: meters(d),
		}}
	}

	stop := pointToward(terminal.Location, destination, p.opts.StationWalkMeters)
	atStop := arrival + ms(seconds(p.opts.StationWalkDuration))
	atDestination := atStop + ms(seconds(p.opts.ShuttleDuration))

	walk := models.Leg{
		Mode:     models.ModeWalk,
		From:     from,
		To:       models.Place{Name: shuttleStopName, Lat: stop.Lat, Lon: stop.Lon, Arrival: at(atStop)},
		Distance: meters(p.opts.StationWalkMeters),
	}

	dest.Arrival = at(atDestination)
	shuttle := models.Leg{
		Mode:     models.ModeBus,
		From:     models.Place{Name: shuttleStopName, Lat: stop.Lat, Lon: stop.Lon, Departure: at(atStop)},
		To:       dest,
		RealTime: true,
		Distance: meters(p.opts.ShuttleMeters),
	}
	shuttle.WithRoute(p.network.Shuttle())

	return []models.Leg{walk, shuttle}
}

func (p *Planner) destinationName(c models.Coordinate) string {
	d := p.network.Destination()
	if d.Name != "" && d.Location == c {
		return d.Name
	}
	return destinationName
}

// summarize derives the itinerary totals from the legs' timestamps. Waiting
// before a leg is charged to that leg; walk legs start as soon as the previous
// leg ends, so WalkTime is exactly the time spent walking.
func summarize(startTime int64, legs []models.Leg) models.Itinerary {
	prev := startTime
	var walk, transit int64
	for _, leg := range legs {
		end := prev
		if leg.To.Arrival != nil {
			end = *leg.To.Arrival
		}
		elapsed := (end - prev) / 1000
		if leg.Mode.IsWalk() {
			walk += elapsed
		} else {
			transit += elapsed
		}
		prev = end
	}

	return models.Itinerary{
		Duration:    (prev - startTime) / 1000,
		StartTime:   startTime,
		EndTime:     prev,
		WalkTime:    walk,
		TransitTime: transit,
		Legs:        legs,
	}
}

func truncateToSecond(t int64) int64 {
	rem := t % 1000
	if rem < 0 {
		rem += 1000
	}
	return t - rem
}

func at(v int64) *int64 {
	return &v
}

func meters(v float64) *float64 {
	return &v
}
