package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timetables are local to the circuit, not the host

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/config"
	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/smarttransit/circuit-trip-planner/internal/planner"
	"github.com/smarttransit/circuit-trip-planner/internal/services"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by all subcommands, built once per invocation
type app struct {
	verbose bool

	cfg     *config.Config
	logger  *logrus.Logger
	planner *planner.Planner
	loc     *time.Location
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Plan trips to the circuit from the command line",
		Long:          "planctl runs the offline trip planner against the configured station network.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log planner decisions to stderr")

	root.AddCommand(newPlanCmd(a), newDeparturesCmd(a), newStationsCmd(a))
	return root
}

// load reads the configuration and builds the planner
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if a.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	p, err := services.BuildPlanner(cfg, logger)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.planner, a.loc = cfg, logger, p, loc
	return nil
}

// parseCoordinate reads "lat,lon" in decimal degrees
func parseCoordinate(s string) (models.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.Coordinate{}, fmt.Errorf("coordinate %q must be lat,lon", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}

	c := models.Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return models.Coordinate{}, err
	}
	return c, nil
}

// parseAt reads an RFC3339 instant; empty means now
func parseAt(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC3339, e.g. 2026-06-14T09:00:00+02:00: %w", err)
	}
	return t, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
