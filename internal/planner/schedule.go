package planner

import (
	"time"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/network"
)

// Schedule computes departures from the fixed pattern at the reference terminal.
// Every station departs TimeOffsetMinutes after the terminal does.
type Schedule struct {
	minutes     []int
	location    *time.Location
	destination string
}

// NewSchedule builds a calculator for a minute-of-hour pattern (e.g. 8 and 38)
func NewSchedule(minutes []int, loc *time.Location, destination string) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	if len(minutes) == 0 {
		minutes = network.DefaultDepartureMinutes
	}
	return Schedule{
		minutes:     append([]int(nil), minutes...),
		location:    loc,
		destination: destination,
	}
}

// NextDeparture returns the first departure from station strictly after
// notBefore plus a one minute buffer. It never fails: when none of the
// current and next hour slots qualify, the next hour's last slot is pushed
// forward by whole hours until it does.
func (s Schedule) NextDeparture(station models.Station, notBefore int64) models.ScheduledDeparture {
	nb := time.UnixMilli(notBefore).In(s.location)
	threshold := nb.Add(departureBuffer)
	year, month, day := nb.Date()
	hour := nb.Hour()

	var last time.Time
	for _, h := range []int{hour, hour + 1} {
		for _, m := range s.minutes {
			// time.Date normalizes minute-of-day values past midnight or below zero
			// into the neighbouring calendar day.
			candidate := time.Date(year, month, day, 0, h*60+m+station.TimeOffsetMinutes, 0, 0, s.location)
			if candidate.After(threshold) {
				return s.departure(candidate)
			}
			last = candidate
		}
	}

	for !last.After(threshold) {
		last = last.Add(time.Hour)
	}
	return s.departure(last)
}

// Departures lists the next n departures from station after notBefore
func (s Schedule) Departures(station models.Station, notBefore int64, n int) []models.ScheduledDeparture {
	if n <= 0 {
		return []models.ScheduledDeparture{}
	}
	out := make([]models.ScheduledDeparture, 0, n)
	t := notBefore
	for len(out) < n {
		dep := s.NextDeparture(station, t)
		out = append(out, dep)
		// step just past the buffer so the next call lands on the following slot
		t = dep.Time - departureBuffer.Milliseconds()
	}
	return out
}

func (s Schedule) departure(t time.Time) models.ScheduledDeparture {
	return models.ScheduledDeparture{
		Time:        t.UnixMilli(),
		Destination: s.destination,
	}
}
