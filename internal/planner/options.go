package planner

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultWalkSpeedMPS           = 1.2
	DefaultTransitSpeedMPS        = 8.3 // ~30 km/h urban metro/bus
	DefaultTransitThresholdMeters = 1200.0
	DefaultTransitAccessWalk      = 5 * time.Minute
	DefaultTransitAccessWait      = 5 * time.Minute
	DefaultStationWalkDuration    = 2 * time.Minute
	DefaultStationWalkMeters      = 100.0
	DefaultShuttleDuration        = 10 * time.Minute
	DefaultShuttleMeters          = 2000.0

	// departureBuffer keeps the calculator from picking a train that is about to leave
	departureBuffer = time.Minute
)

// Options tunes the cost model. The zero value is not usable; start from DefaultOptions.
type Options struct {
	WalkSpeedMPS           float64
	TransitSpeedMPS        float64
	TransitThresholdMeters float64
	TransitAccessWalk      time.Duration
	TransitAccessWait      time.Duration

	StationWalkDuration time.Duration
	StationWalkMeters   float64
	ShuttleDuration     time.Duration
	ShuttleMeters       float64

	// Location anchors minute-of-hour timetable arithmetic
	Location *time.Location

	// Shuttle decides whether the last-mile shuttle runs at a given rail arrival time
	Shuttle ShuttlePolicy
}

// DefaultOptions returns the cost model constants with the shuttle always running
func DefaultOptions() Options {
	return Options{
		WalkSpeedMPS:           DefaultWalkSpeedMPS,
		TransitSpeedMPS:        DefaultTransitSpeedMPS,
		TransitThresholdMeters: DefaultTransitThresholdMeters,
		TransitAccessWalk:      DefaultTransitAccessWalk,
		TransitAccessWait:      DefaultTransitAccessWait,
		StationWalkDuration:    DefaultStationWalkDuration,
		StationWalkMeters:      DefaultStationWalkMeters,
		ShuttleDuration:        DefaultShuttleDuration,
		ShuttleMeters:          DefaultShuttleMeters,
		Location:               time.UTC,
		Shuttle:                AlwaysShuttle(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WalkSpeedMPS <= 0 {
		o.WalkSpeedMPS = d.WalkSpeedMPS
	}
	if o.TransitSpeedMPS <= 0 {
		o.TransitSpeedMPS = d.TransitSpeedMPS
	}
	if o.TransitThresholdMeters <= 0 {
		o.TransitThresholdMeters = d.TransitThresholdMeters
	}
	if o.TransitAccessWalk <= 0 {
		o.TransitAccessWalk = d.TransitAccessWalk
	}
	if o.TransitAccessWait < 0 {
		o.TransitAccessWait = d.TransitAccessWait
	}
	if o.StationWalkDuration <= 0 {
		o.StationWalkDuration = d.StationWalkDuration
	}
	if o.StationWalkMeters <= 0 {
		o.StationWalkMeters = d.StationWalkMeters
	}
	if o.ShuttleDuration <= 0 {
		o.ShuttleDuration = d.ShuttleDuration
	}
	if o.ShuttleMeters <= 0 {
		o.ShuttleMeters = d.ShuttleMeters
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	if o.Shuttle == nil {
		o.Shuttle = d.Shuttle
	}
	return o
}

// ShuttlePolicy reports whether the circuit shuttle serves a rail arrival at t
type ShuttlePolicy func(t time.Time) bool

// AlwaysShuttle runs the shuttle for every arrival
func AlwaysShuttle() ShuttlePolicy {
	return func(time.Time) bool { return true }
}

// NeverShuttle sends every rider on foot from the terminal
func NeverShuttle() ShuttlePolicy {
	return func(time.Time) bool { return false }
}

// EventDaysShuttle runs the shuttle only on the given calendar dates
// (YYYY-MM-DD, evaluated in loc)
func EventDaysShuttle(loc *time.Location, dates ...string) (ShuttlePolicy, error) {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[string]bool, len(dates))
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, err := time.ParseInLocation("2006-01-02", d, loc); err != nil {
			return nil, fmt.Errorf("invalid event date %q: %w", d, err)
		}
		days[d] = true
	}
	return func(t time.Time) bool {
		return days[t.In(loc).Format("2006-01-02")]
	}, nil
}

// ShuttlePolicyFor builds a policy from its config name: always, never or event-days
func ShuttlePolicyFor(mode string, loc *time.Location, dates []string) (ShuttlePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "always":
		return AlwaysShuttle(), nil
	case "never":
		return NeverShuttle(), nil
	case "event-days":
		return EventDaysShuttle(loc, dates...)
	}
	return nil, fmt.Errorf("invalid shuttle mode: %s (must be 'always', 'never' or 'event-days')", mode)
}
