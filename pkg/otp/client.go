// Package otp is a small client for OpenTripPlanner-compatible plan endpoints
// (the REST "plan" resource). Responses are mapped onto the itinerary contract
// served by this application.
package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
)

// ErrUnavailable wraps every failure to obtain a usable plan
var ErrUnavailable = errors.New("live planner unavailable")

// maxBodyBytes caps the response size read from upstream
const maxBodyBytes = 4 << 20

// Client calls a remote planner
type Client struct {
	baseURL  string
	client   *http.Client
	location *time.Location
}

// NewClient creates a new live planner client. baseURL is the router root,
// e.g. http://otp:8080/otp/routers/default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		location: time.UTC,
	}
}

// WithLocation sets the time zone used for the date and time query parameters
func (c *Client) WithLocation(loc *time.Location) *Client {
	if loc != nil {
		c.location = loc
	}
	return c
}

type planResponse struct {
	Plan *struct {
		Itineraries []itinerary `json:"itineraries"`
	} `json:"plan"`
	Error *struct {
		ID      int    `json:"id"`
		Message string `json:"msg"`
	} `json:"error"`
}

type itinerary struct {
	Duration    int64 `json:"duration"`
	StartTime   int64 `json:"startTime"`
	EndTime     int64 `json:"endTime"`
	WalkTime    int64 `json:"walkTime"`
	TransitTime int64 `json:"transitTime"`
	Legs        []leg `json:"legs"`
}

type leg struct {
	Mode           string   `json:"mode"`
	RouteID        string   `json:"routeId"`
	RouteShortName string   `json:"routeShortName"`
	RouteLongName  string   `json:"routeLongName"`
	RouteColor     string   `json:"routeColor"`
	From           place    `json:"from"`
	To             place    `json:"to"`
	RealTime       bool     `json:"realTime"`
	Distance       *float64 `json:"distance"`
	LegGeometry    *struct {
		Points string `json:"points"`
	} `json:"legGeometry"`
}

type place struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Departure *int64  `json:"departure"`
	Arrival   *int64  `json:"arrival"`
}

// Plan asks the remote planner for the best itinerary between two points
func (c *Client) Plan(ctx context.Context, from, to models.Coordinate, startTime int64) (*models.Itinerary, error) {
	start := time.UnixMilli(startTime).In(c.location)

	q := url.Values{}
	q.Set("fromPlace", from.String())
	q.Set("toPlace", to.String())
	q.Set("date", start.Format("2006-01-02"))
	q.Set("time", start.Format("15:04"))
	q.Set("mode", "TRANSIT,WALK")
	q.Set("numItineraries", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/plan?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var result planResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrUnavailable, err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s (%d)", ErrUnavailable, result.Error.Message, result.Error.ID)
	}
	if result.Plan == nil || len(result.Plan.Itineraries) == 0 {
		return nil, fmt.Errorf("%w: no itinerary found", ErrUnavailable)
	}

	it, err := convert(result.Plan.Itineraries[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &it, nil
}

func convert(src itinerary) (models.Itinerary, error) {
	if len(src.Legs) == 0 {
		return models.Itinerary{}, fmt.Errorf("itinerary has no legs")
	}

	legs := make([]models.Leg, 0, len(src.Legs))
	for i, l := range src.Legs {
		mode, err := mapMode(l.Mode)
		if err != nil {
			return models.Itinerary{}, fmt.Errorf("leg %d: %w", i, err)
		}
		out := models.Leg{
			Mode:     mode,
			From:     models.Place(l.From),
			To:       models.Place(l.To),
			RealTime: l.RealTime,
			Distance: l.Distance,
		}
		out.WithRoute(models.Line{ID: l.RouteID, ShortName: l.RouteShortName, LongName: l.RouteLongName, Color: l.RouteColor})
		if l.LegGeometry != nil && l.LegGeometry.Points != "" {
			points := l.LegGeometry.Points
			out.LegGeometry = &points
		}
		legs = append(legs, out)
	}

	return models.Itinerary{
		Duration:    src.Duration,
		StartTime:   src.StartTime,
		EndTime:     src.EndTime,
		WalkTime:    src.WalkTime,
		TransitTime: src.TransitTime,
		Legs:        legs,
	}, nil
}

// mapMode folds the upstream mode vocabulary onto the four modes we serve
func mapMode(mode string) (models.Mode, error) {
	switch strings.ToUpper(mode) {
	case "WALK", "BICYCLE":
		return models.ModeWalk, nil
	case "BUS", "COACH", "TROLLEYBUS", "FERRY":
		return models.ModeBus, nil
	case "RAIL":
		return models.ModeRail, nil
	case "SUBWAY", "TRAM", "FUNICULAR", "CABLE_CAR", "GONDOLA", "MONORAIL":
		return models.ModeSubway, nil
	}
	return 0, fmt.Errorf("unsupported mode %q", mode)
}
