package planner

import (
	"math"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
)

// StationPath is the selector's pick: the entry station, when the rider gets
// there, the legs to get there and the total cost in seconds used to compare
// candidates. A nil Station means no station is reachable.
type StationPath struct {
	Station    *models.Station
	ArrivalAt  int64
	AccessLegs []models.Leg
	Score      float64
}

// accessCost is the evaluation of one candidate station
type accessCost struct {
	distance float64
	transit  bool
	travel   int64 // seconds from start to arrival at the station
	arrival  int64 // epoch ms
	wait     float64
	score    float64
}

// SelectBestStation evaluates every candidate station under direct walking and,
// beyond the transit threshold, transit-assisted access, adds the wait for the
// next scheduled departure, and keeps the cheapest. Candidates are visited in
// station id order and only a strictly lower score replaces the current best,
// so the lowest id wins ties.
func (p *Planner) SelectBestStation(userLocation models.Coordinate, startTime int64) StationPath {
	best := StationPath{Score: math.Inf(1)}
	var bestCost accessCost

	for _, st := range p.network.Stations() {
		cost := p.evaluate(userLocation, st, startTime)
		if cost.score < best.Score {
			station := st
			best = StationPath{
				Station:   &station,
				ArrivalAt: cost.arrival,
				Score:     cost.score,
			}
			bestCost = cost
		}
	}

	if best.Station != nil {
		best.AccessLegs = p.accessLegs(userLocation, *best.Station, startTime, bestCost)
	}
	return best
}

func (p *Planner) evaluate(from models.Coordinate, st models.Station, startTime int64) accessCost {
	d := distanceMeters(from, st.Location)
	cost := accessCost{
		distance: d,
		travel:   travelSeconds(d, p.opts.WalkSpeedMPS),
	}

	if d > p.opts.TransitThresholdMeters {
		transit := seconds(p.opts.TransitAccessWalk+p.opts.TransitAccessWait) + travelSeconds(d, p.opts.TransitSpeedMPS)
		if transit < cost.travel {
			cost.travel = transit
			cost.transit = true
		}
	}

	cost.arrival = startTime + ms(cost.travel)
	dep := p.schedule.NextDeparture(st, cost.arrival)
	cost.wait = float64(dep.Time-cost.arrival) / 1000
	cost.score = float64(cost.travel) + cost.wait
	return cost
}

func (p *Planner) accessLegs(from models.Coordinate, st models.Station, startTime int64, cost accessCost) []models.Leg {
	origin := models.Place{Name: originName, Lat: from.Lat, Lon: from.Lon, Departure: at(startTime)}
	station := models.Place{Name: st.Name, Lat: st.Location.Lat, Lon: st.Location.Lon, Arrival: at(cost.arrival)}

	if !cost.transit {
		return []models.Leg{{
			Mode:     models.ModeWalk,
			From:     origin,
			To:       station,
			Distance: meters(cost.distance),
		}}
	}

	walkSec := seconds(p.opts.TransitAccessWalk)
	walkMeters := float64(walkSec) * p.opts.WalkSpeedMPS
	hub := pointToward(from, st.Location, walkMeters)
	atHub := startTime + ms(walkSec)
	boarding := atHub + ms(seconds(p.opts.TransitAccessWait))

	walk := models.Leg{
		Mode:     models.ModeWalk,
		From:     origin,
		To:       models.Place{Name: transitStopName, Lat: hub.Lat, Lon: hub.Lon, Arrival: at(atHub)},
		Distance: meters(walkMeters),
	}
	ride := models.Leg{
		Mode:     models.ModeSubway,
		From:     models.Place{Name: transitStopName, Lat: hub.Lat, Lon: hub.Lon, Arrival: at(atHub), Departure: at(boarding)},
		To:       station,
		Distance: meters(math.Max(cost.distance-walkMeters, 0)),
	}
	ride.WithRoute(p.network.Access())

	return []models.Leg{walk, ride}
}
