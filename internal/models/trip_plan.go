package models

import (
	"fmt"
	"math"
	"time"
)

// Coordinate is a WGS84 position in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Validate rejects NaN, infinite and out of range coordinates
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return ErrInvalidInput("coordinate must be a finite number")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidInput(fmt.Sprintf("latitude %.6f out of range [-90, 90]", c.Lat))
	}
	if c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidInput(fmt.Sprintf("longitude %.6f out of range [-180, 180]", c.Lon))
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// TripPlanRequest represents a rider's request for an itinerary to the circuit
type TripPlanRequest struct {
	Origin      *Coordinate `json:"origin" binding:"required"`
	Destination *Coordinate `json:"destination,omitempty"` // Optional: defaults to the configured circuit
	StartTime   *int64      `json:"startTime,omitempty"`   // Optional: epoch ms, defaults to now
}

// Validate validates the plan request
func (r *TripPlanRequest) Validate() error {
	if r.Origin == nil {
		return ErrInvalidInput("origin is required")
	}
	if err := r.Origin.Validate(); err != nil {
		return ErrInvalidInput("origin: " + err.Error())
	}
	if r.Destination != nil {
		if err := r.Destination.Validate(); err != nil {
			return ErrInvalidInput("destination: " + err.Error())
		}
	}
	if r.StartTime != nil && *r.StartTime < 0 {
		return ErrInvalidInput("startTime must be a positive epoch timestamp in milliseconds")
	}
	return nil
}

// GetStartTime returns the requested start time or now
func (r *TripPlanRequest) GetStartTime(now time.Time) int64 {
	if r.StartTime != nil {
		return *r.StartTime
	}
	return now.UnixMilli()
}

// PlanSource tells callers which planner produced the itinerary
type PlanSource string

const (
	SourceLive     PlanSource = "live"
	SourceFallback PlanSource = "fallback"
)

// TripPlanResponse wraps an itinerary with request metadata
type TripPlanResponse struct {
	PlanID    string     `json:"planId"`
	Source    PlanSource `json:"source"`
	Itinerary Itinerary  `json:"itinerary"`
}

// ErrInvalidInput creates a validation error
func ErrInvalidInput(message string) error {
	return &ValidationError{Message: message}
}

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
