package main

import (
	"context"
	"time"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/services"
	"github.com/smarttransit/circuit-trip-planner/pkg/otp"
	"github.com/smarttransit/circuit-trip-planner/pkg/tripgeo"
	"github.com/spf13/cobra"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		from    string
		to      string
		at      string
		geoJSON bool
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip and print the itinerary",
		Long: `Plan a trip to the circuit and print the itinerary as JSON.

Examples:
  # From Sagrada Familia, leaving now
  planctl plan --from 41.4036,2.1744

  # Race morning, as GeoJSON for a map
  planctl plan --from 41.4036,2.1744 --at 2026-06-14T08:00:00+02:00 --geojson
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := parseCoordinate(from)
			if err != nil {
				return err
			}
			req := &models.TripPlanRequest{Origin: &origin}

			if to != "" {
				destination, err := parseCoordinate(to)
				if err != nil {
					return err
				}
				req.Destination = &destination
			}

			start, err := parseAt(at, time.Now())
			if err != nil {
				return err
			}
			startMillis := start.UnixMilli()
			req.StartTime = &startMillis

			if err := a.load(cmd); err != nil {
				return err
			}

			service := services.NewTripPlannerService(a.planner, a.planner.Network().Destination().Location, nil, a.logger)
			if a.cfg.LivePlanner.Enabled() && !offline {
				client := otp.NewClient(a.cfg.LivePlanner.URL, a.cfg.LivePlanner.Timeout).WithLocation(a.loc)
				service.WithLivePlanner(client, a.cfg.LivePlanner.Timeout)
			}

			resp, err := service.PlanTrip(context.Background(), req)
			if err != nil {
				return err
			}

			if geoJSON {
				fc := tripgeo.FeatureCollection(resp.Itinerary)
				fc.ExtraMembers["planId"] = resp.PlanID
				fc.ExtraMembers["source"] = resp.Source
				return writeJSON(cmd.OutOrStdout(), fc)
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Origin as lat,lon")
	cmd.Flags().StringVar(&to, "to", "", "Destination as lat,lon (default: the circuit)")
	cmd.Flags().StringVar(&at, "at", "", "Start time in RFC3339 (default: now)")
	cmd.Flags().BoolVar(&geoJSON, "geojson", false, "Print a GeoJSON FeatureCollection instead of the itinerary")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the live planner even when LIVE_PLANNER_URL is set")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
