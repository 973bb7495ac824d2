package network

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition() Definition {
	return Definition{
		Line:             models.Line{ID: "R2N", ShortName: "R2 Nord"},
		Destination:      Destination{Name: "Circuit", Location: models.Coordinate{Lat: 41.57, Lon: 2.26}},
		DepartureMinutes: []int{8, 38},
		Reference:        "sants",
		Terminal:         "montmelo",
		Stations: []models.Station{
			{ID: "sants", Name: "Sants", Location: models.Coordinate{Lat: 41.3792, Lon: 2.1404}, Category: models.CategoryRail},
			{ID: "clot", Name: "Clot", Location: models.Coordinate{Lat: 41.4076, Lon: 2.1873}, Category: models.CategoryTransitNode, TimeOffsetMinutes: 8},
			{ID: "montmelo", Name: "Montmeló", Location: models.Coordinate{Lat: 41.5547, Lon: 2.2486}, Category: models.CategoryRail, TimeOffsetMinutes: 29},
		},
	}
}

func TestDefault(t *testing.T) {
	n, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 10, n.Len())
	assert.Equal(t, "montmelo", n.Terminal().ID)
	assert.Equal(t, 29, n.Terminal().TimeOffsetMinutes)
	assert.Equal(t, []int{8, 38}, n.DepartureMinutes())
	assert.Equal(t, "R2N", n.Line().ID)
	assert.Equal(t, "CIRCUIT-SHUTTLE", n.Shuttle().ID)
	assert.Equal(t, "METRO", n.Access().ID)
	assert.Equal(t, "Circuit de Barcelona-Catalunya", n.Destination().Name)

	ref, ok := n.Reference()
	require.True(t, ok)
	assert.Equal(t, "sants", ref.ID)
	assert.Zero(t, ref.TimeOffsetMinutes)

	stations := n.Stations()
	assert.True(t, sort.SliceIsSorted(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID }))
	for _, st := range stations {
		assert.NotEqual(t, "montmelo", st.ID, "terminal is never a candidate")
	}

	clot, err := n.Station("clot-arago")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTransitNode, clot.Category)
}

func TestNew(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		n, err := New(testDefinition())
		require.NoError(t, err)

		stations := n.Stations()
		require.Len(t, stations, 2)
		assert.Equal(t, "clot", stations[0].ID)
		assert.Equal(t, "sants", stations[1].ID)
	})

	t.Run("stations are copies", func(t *testing.T) {
		n, err := New(testDefinition())
		require.NoError(t, err)

		stations := n.Stations()
		stations[0].Name = "changed"
		assert.Equal(t, "Clot", n.Stations()[0].Name)
	})

	t.Run("default departure minutes", func(t *testing.T) {
		def := testDefinition()
		def.DepartureMinutes = nil
		n, err := New(def)
		require.NoError(t, err)
		assert.Equal(t, DefaultDepartureMinutes, n.DepartureMinutes())
	})

	t.Run("reference may be the terminal", func(t *testing.T) {
		def := testDefinition()
		def.Reference = "montmelo"
		n, err := New(def)
		require.NoError(t, err)
		ref, ok := n.Reference()
		require.True(t, ok)
		assert.Equal(t, "montmelo", ref.ID)
	})

	t.Run("no reference", func(t *testing.T) {
		def := testDefinition()
		def.Reference = ""
		n, err := New(def)
		require.NoError(t, err)
		_, ok := n.Reference()
		assert.False(t, ok)
	})
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr error
	}{
		{
			name:    "missing terminal id",
			mutate:  func(d *Definition) { d.Terminal = "" },
			wantErr: ErrNoTerminal,
		},
		{
			name:    "unknown terminal",
			mutate:  func(d *Definition) { d.Terminal = "granollers" },
			wantErr: ErrUnknownStation,
		},
		{
			name:    "unknown reference",
			mutate:  func(d *Definition) { d.Reference = "nowhere" },
			wantErr: ErrUnknownStation,
		},
		{
			name:    "duplicate station",
			mutate:  func(d *Definition) { d.Stations = append(d.Stations, d.Stations[0]) },
			wantErr: ErrDuplicateStation,
		},
		{
			name:    "minutes out of range",
			mutate:  func(d *Definition) { d.DepartureMinutes = []int{8, 60} },
			wantErr: ErrInvalidDepartureMinutes,
		},
		{
			name:    "minutes not ascending",
			mutate:  func(d *Definition) { d.DepartureMinutes = []int{38, 8} },
			wantErr: ErrInvalidDepartureMinutes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition()
			tt.mutate(&def)

			_, err := New(def)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNew_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{name: "station without name", mutate: func(d *Definition) { d.Stations[0].Name = "" }},
		{name: "unknown category", mutate: func(d *Definition) { d.Stations[0].Category = "tram" }},
		{name: "latitude out of range", mutate: func(d *Definition) { d.Stations[1].Location.Lat = 95 }},
		{name: "bad destination", mutate: func(d *Definition) { d.Destination.Location.Lon = 200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition()
			tt.mutate(&def)

			_, err := New(def)
			var vErr *models.ValidationError
			assert.True(t, errors.As(err, &vErr), "got %v", err)
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
line: {id: R2N, short_name: R2 Nord}
destination: {name: Circuit, lat: 41.57, lon: 2.2611}
departure_minutes: [5, 35]
terminal: end
stations:
  - {id: start, name: Start, location: {lat: 41.38, lon: 2.14}, category: rail, time_offset_minutes: -3}
  - {id: end, name: End, location: {lat: 41.55, lon: 2.25}, category: rail, time_offset_minutes: 25}
`)

	n, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 35}, n.DepartureMinutes())
	assert.Equal(t, "R2 Nord", n.Line().ShortName)
	assert.Equal(t, models.Coordinate{Lat: 41.57, Lon: 2.2611}, n.Destination().Location)
	require.Equal(t, 1, n.Len())
	assert.Equal(t, -3, n.Stations()[0].TimeOffsetMinutes)

	_, err = Parse([]byte("stations: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	require.NoError(t, os.WriteFile(path, embeddedDefinition, 0o600))

	n, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10, n.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStation_Unknown(t *testing.T) {
	n, err := New(testDefinition())
	require.NoError(t, err)

	_, err = n.Station("nowhere")
	assert.ErrorIs(t, err, ErrUnknownStation)

	terminal, err := n.Station("montmelo")
	require.NoError(t, err)
	assert.Equal(t, "Montmeló", terminal.Name)
}
