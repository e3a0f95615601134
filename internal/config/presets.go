package config

import "sort"

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"small": {
		Grid:          GridConfig{NX: 12, NY: 9, LX: 1.0, LY: 0.75},
		Boundary:      []BoundaryConfig{{Edge: "west", From: 1.0 / 3, To: 2.0 / 3, Value: 1.0}},
		Tolerance:     1e-5,
		MaxIterations: 2000,
		Interior:      "full",
		Workers:       1,
		Sweep:         SweepConfig{Start: 1.0, Stop: 2.0, Step: 0.1},
	},
	"literal": {
		Grid:          GridConfig{NX: DefaultNX, NY: DefaultNY, LX: DefaultLX, LY: DefaultLY},
		Boundary:      []BoundaryConfig{{Edge: "west", From: 1.0 / 3, To: 2.0 / 3, Value: 1.0}},
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Interior:      "reference",
		Workers:       1,
		Sweep:         SweepConfig{Start: DefaultSweepStart, Stop: DefaultSweepStop, Step: DefaultSweepStep},
	},
	"source": {
		Grid:          GridConfig{NX: 41, NY: 41, LX: 1.0, LY: 1.0},
		Source:        -10.0,
		Tolerance:     1e-5,
		MaxIterations: 20000,
		Interior:      "full",
		Workers:       4,
		Sweep:         SweepConfig{Start: 1.5, Stop: 2.0, Step: 0.025},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	c.Boundary = append([]BoundaryConfig(nil), p.Boundary...)
	c.Sweep.Factors = append([]float64(nil), p.Sweep.Factors...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
