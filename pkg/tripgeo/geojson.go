// Package tripgeo renders itineraries as GeoJSON for map clients
package tripgeo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
)

// FeatureCollection returns one LineString feature per leg plus Point features
// for the itinerary's origin and destination. Legs carry no geometry, so each
// line is the straight segment between its endpoints.
func FeatureCollection(it models.Itinerary) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"duration":  it.Duration,
		"startTime": it.StartTime,
		"endTime":   it.EndTime,
	}
	if len(it.Legs) == 0 {
		return fc
	}

	first, last := it.Legs[0].From, it.Legs[len(it.Legs)-1].To
	fc.Append(placeFeature(first, "origin"))

	for i, leg := range it.Legs {
		f := geojson.NewFeature(orb.LineString{point(leg.From), point(leg.To)})
		f.Properties["kind"] = "leg"
		f.Properties["index"] = i
		f.Properties["mode"] = leg.Mode.String()
		f.Properties["from"] = leg.From.Name
		f.Properties["to"] = leg.To.Name
		f.Properties["realTime"] = leg.RealTime
		if leg.From.Departure != nil {
			f.Properties["departure"] = *leg.From.Departure
		}
		if leg.To.Arrival != nil {
			f.Properties["arrival"] = *leg.To.Arrival
		}
		if leg.Distance != nil {
			f.Properties["distance"] = *leg.Distance
		}
		if leg.RouteShortName != nil {
			f.Properties["route"] = *leg.RouteShortName
		}
		if leg.RouteColor != nil {
			f.Properties["color"] = "#" + *leg.RouteColor
		}
		fc.Append(f)
	}

	fc.Append(placeFeature(last, "destination"))
	fc.BBox = geojson.NewBBox(Bound(it))
	return fc
}

// Bound returns the bounding box of all leg endpoints
func Bound(it models.Itinerary) orb.Bound {
	mp := make(orb.MultiPoint, 0, 2*len(it.Legs))
	for _, leg := range it.Legs {
		mp = append(mp, point(leg.From), point(leg.To))
	}
	return mp.Bound()
}

func placeFeature(p models.Place, kind string) *geojson.Feature {
	f := geojson.NewFeature(point(p))
	f.Properties["kind"] = kind
	f.Properties["name"] = p.Name
	return f
}

func point(p models.Place) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
