package planner

import (
	"github.com/smarttransit/circuit-trip-planner/internal/models"
)

// WalkDirect is the degraded plan used when the network offers no entry
// station: one walking leg from origin to destination at walking speed.
func (p *Planner) WalkDirect(origin, destination models.Coordinate, startTime int64) models.Itinerary {
	startTime = truncateToSecond(startTime)

	d := distanceMeters(origin, destination)
	end := startTime + ms(travelSeconds(d, p.opts.WalkSpeedMPS))

	leg := models.Leg{
		Mode:     models.ModeWalk,
		From:     models.Place{Name: originName, Lat: origin.Lat, Lon: origin.Lon, Departure: at(startTime)},
		To:       models.Place{Name: p.destinationName(destination), Lat: destination.Lat, Lon: destination.Lon, Arrival: at(end)},
		Distance: meters(d),
	}
	return summarize(startTime, []models.Leg{leg})
}
