package planner

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
)

func toPoint(c models.Coordinate) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

func fromPoint(p orb.Point) models.Coordinate {
	return models.Coordinate{Lat: p.Lat(), Lon: p.Lon()}
}

// distanceMeters is the great-circle distance between two coordinates
func distanceMeters(a, b models.Coordinate) float64 {
	return geo.DistanceHaversine(toPoint(a), toPoint(b))
}

// pointToward returns the point meters along the great circle from a toward b
func pointToward(a, b models.Coordinate, meters float64) models.Coordinate {
	if meters <= 0 {
		return a
	}
	bearing := geo.Bearing(toPoint(a), toPoint(b))
	return fromPoint(geo.PointAtBearingAndDistance(toPoint(a), bearing, meters))
}

// travelSeconds converts a distance at a speed into whole seconds
func travelSeconds(meters, speedMPS float64) int64 {
	return int64(math.Round(meters / speedMPS))
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func ms(sec int64) int64 {
	return sec * 1000
}
