// Package network holds the static description of the rail line the fallback
// planner knows about: the candidate entry stations, the reference terminal the
// timetable is anchored on, and the destination terminal serving the circuit.
//
// A Network is built once at process start and never mutated afterwards.
package network

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed stations.yaml
var embeddedDefinition []byte

var (
	// ErrUnknownStation indicates a station id that is not part of the network
	ErrUnknownStation = errors.New("unknown station")

	// ErrNoTerminal indicates the definition does not name a destination terminal
	ErrNoTerminal = errors.New("network has no destination terminal")

	// ErrDuplicateStation indicates two stations share the same id
	ErrDuplicateStation = errors.New("duplicate station id")

	// ErrInvalidDepartureMinutes indicates a bad reference timetable pattern
	ErrInvalidDepartureMinutes = errors.New("departure minutes must be ascending values in [0, 59]")
)

// DefaultDepartureMinutes is the reference terminal's minute-of-hour pattern
var DefaultDepartureMinutes = []int{8, 38}

// Destination is the fixed end point of every itinerary
type Destination struct {
	Name     string            `yaml:"name"`
	Location models.Coordinate `yaml:",inline"`
}

// Definition is the serialized form of a network (see stations.yaml)
type Definition struct {
	Line             models.Line      `yaml:"line"`
	Shuttle          models.Line      `yaml:"shuttle"`
	Access           models.Line      `yaml:"access"`
	Destination      Destination      `yaml:"destination"`
	DepartureMinutes []int            `yaml:"departure_minutes"`
	Reference        string           `yaml:"reference"`
	Terminal         string           `yaml:"terminal"`
	Stations         []models.Station `yaml:"stations"`
}

// Network is the read-only network model
type Network struct {
	line             models.Line
	shuttle          models.Line
	access           models.Line
	destination      Destination
	departureMinutes []int
	reference        *models.Station
	terminal         models.Station
	candidates       []models.Station
}

// New validates a definition and freezes it into a Network.
// Candidate stations are ordered by id; that order is the selector's tie-break.
func New(def Definition) (*Network, error) {
	if def.Terminal == "" {
		return nil, ErrNoTerminal
	}

	minutes := def.DepartureMinutes
	if len(minutes) == 0 {
		minutes = DefaultDepartureMinutes
	}
	for i, m := range minutes {
		if m < 0 || m > 59 || (i > 0 && m <= minutes[i-1]) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDepartureMinutes, minutes)
		}
	}

	if err := def.Destination.Location.Validate(); err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}

	n := &Network{
		line:             def.Line,
		shuttle:          def.Shuttle,
		access:           def.Access,
		destination:      def.Destination,
		departureMinutes: append([]int(nil), minutes...),
	}

	seen := make(map[string]bool, len(def.Stations))
	foundTerminal := false
	for _, st := range def.Stations {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStation, st.ID)
		}
		seen[st.ID] = true

		st.Lines = append([]string(nil), st.Lines...)
		if st.ID == def.Terminal {
			n.terminal = st
			foundTerminal = true
			continue
		}
		if st.ID == def.Reference {
			ref := st
			n.reference = &ref
		}
		n.candidates = append(n.candidates, st)
	}

	if !foundTerminal {
		return nil, fmt.Errorf("%w: terminal %q not found", ErrUnknownStation, def.Terminal)
	}
	if def.Reference != "" && def.Reference != def.Terminal && n.reference == nil {
		return nil, fmt.Errorf("%w: reference %q not found", ErrUnknownStation, def.Reference)
	}
	if def.Reference == def.Terminal && def.Reference != "" {
		ref := n.terminal
		n.reference = &ref
	}

	sort.SliceStable(n.candidates, func(i, j int) bool {
		return n.candidates[i].ID < n.candidates[j].ID
	})

	return n, nil
}

// Parse decodes a YAML definition and builds the network
func Parse(data []byte) (*Network, error) {
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, err
	}
	return New(def)
}

// ParseDefinition decodes a YAML definition without validating it
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("failed to parse network definition: %w", err)
	}
	return def, nil
}

// DefaultDefinition returns the embedded definition
func DefaultDefinition() (Definition, error) {
	return ParseDefinition(embeddedDefinition)
}

// Default returns the embedded network
func Default() (*Network, error) {
	return Parse(embeddedDefinition)
}

// LoadDefinitionFile reads a network definition from a YAML file without validating it
func LoadDefinitionFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read network file: %w", err)
	}
	return ParseDefinition(data)
}

// LoadFile reads and builds a network from a YAML file
func LoadFile(path string) (*Network, error) {
	def, err := LoadDefinitionFile(path)
	if err != nil {
		return nil, err
	}
	return New(def)
}

// Stations returns the candidate entry stations in tie-break order.
// The returned slice is a copy; the stations' Lines must not be modified.
func (n *Network) Stations() []models.Station {
	return append([]models.Station(nil), n.candidates...)
}

// Len returns the number of candidate entry stations
func (n *Network) Len() int {
	return len(n.candidates)
}

// Station looks a station up by id, terminal included
func (n *Network) Station(id string) (models.Station, error) {
	if id == n.terminal.ID {
		return n.terminal, nil
	}
	for _, st := range n.candidates {
		if st.ID == id {
			return st, nil
		}
	}
	return models.Station{}, fmt.Errorf("%w: %s", ErrUnknownStation, id)
}

// Reference returns the timetable reference terminal, if the network has one
func (n *Network) Reference() (models.Station, bool) {
	if n.reference == nil {
		return models.Station{}, false
	}
	return *n.reference, true
}

// Terminal returns the rail station serving the destination
func (n *Network) Terminal() models.Station {
	return n.terminal
}

// Destination returns the fixed end point
func (n *Network) Destination() Destination {
	return n.destination
}

// DepartureMinutes returns the reference terminal's minute-of-hour pattern
func (n *Network) DepartureMinutes() []int {
	return append([]int(nil), n.departureMinutes...)
}

// Line returns the rail line metadata
func (n *Network) Line() models.Line { return n.line }

// Shuttle returns the last-mile shuttle metadata
func (n *Network) Shuttle() models.Line { return n.shuttle }

// Access returns the urban transit metadata used for transit-assisted access legs
func (n *Network) Access() models.Line { return n.access }
