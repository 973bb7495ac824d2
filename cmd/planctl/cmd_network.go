package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/smarttransit/circuit-trip-planner/internal/services"
	"github.com/spf13/cobra"
)

func newStationsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List the candidate stations of the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}

			info := services.NewStationService(a.planner, a.logger).GetNetwork()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tOFFSET\tLAT\tLON")
			for _, s := range info.Stations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%+d\t%.4f\t%.4f\n",
					s.ID, s.Name, s.Category, s.TimeOffsetMinutes, s.Location.Lat, s.Location.Lon)
			}
			fmt.Fprintf(w, "%s\t%s\tterminal\t%+d\t%.4f\t%.4f\n",
				info.Terminal.ID, info.Terminal.Name, info.Terminal.TimeOffsetMinutes,
				info.Terminal.Location.Lat, info.Terminal.Location.Lon)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the network description as JSON")
	return cmd
}

func newDeparturesCmd(a *app) *cobra.Command {
	var (
		at    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "departures <station-id>",
		Short: "List the next departures from a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			after, err := parseAt(at, time.Now())
			if err != nil {
				return err
			}

			if err := a.load(cmd); err != nil {
				return err
			}

			afterMillis := after.UnixMilli()
			resp, err := services.NewStationService(a.planner, a.logger).GetDepartures(args[0], &afterMillis, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\n", resp.Station.Name)
			for _, dep := range resp.Departures {
				fmt.Fprintf(w, "%s\t%s\n", time.UnixMilli(dep.Time).In(a.loc).Format("2006-01-02 15:04"), dep.Destination)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "List departures after this RFC3339 time (default: now)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of departures (1-24)")
	return cmd
}
