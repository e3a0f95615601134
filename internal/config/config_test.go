package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/poisson/internal/grid"
	"github.com/san-kum/poisson/internal/solver"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 40, cfg.Grid.NX)
	assert.Equal(t, 30, cfg.Grid.NY)
	assert.Equal(t, 1e-4, cfg.Tolerance)
	assert.Equal(t, 10000, cfg.MaxIterations)

	betas, err := cfg.Factors()
	require.NoError(t, err)
	assert.Len(t, betas, 20)
}

func TestBuildGrid_ReferenceStrip(t *testing.T) {
	g, err := DefaultConfig().BuildGrid()
	require.NoError(t, err)

	want := grid.MiddleThird(grid.West, g)
	for j := 0; j < g.NY; j++ {
		expected := 0.0
		if j >= want.From && j < want.To {
			expected = 1.0
		}
		assert.Equal(t, expected, g.At(0, j), "j=%d", j)
	}
}

func TestSolverConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interior = "reference"
	cfg.Source = 2
	cfg.Workers = 3

	sc := cfg.SolverConfig()
	assert.Equal(t, solver.InteriorReference, sc.Interior)
	assert.Equal(t, 2.0, sc.Source)
	assert.Equal(t, 3, sc.Workers)
	assert.Equal(t, cfg.Tolerance, sc.Tolerance)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"tiny grid", func(c *Config) { c.Grid.NX = 2 }},
		{"zero extent", func(c *Config) { c.Grid.LY = 0 }},
		{"bad edge", func(c *Config) { c.Boundary[0].Edge = "up" }},
		{"bad span", func(c *Config) { c.Boundary[0].From, c.Boundary[0].To = 0.5, 0.2 }},
		{"bad interior", func(c *Config) { c.Interior = "most" }},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"zero budget", func(c *Config) { c.MaxIterations = 0 }},
		{"empty sweep", func(c *Config) { c.Sweep.Step = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidate_WrapsDomainErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grid.NY = 1
	assert.ErrorIs(t, cfg.Validate(), grid.ErrInvalidGrid)
}

func TestFactors_ExplicitListWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sweep.Factors = []float64{1.2, 1.8}
	cfg.Sweep.Step = 0

	require.NoError(t, cfg.Validate())
	betas, err := cfg.Factors()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.2, 1.8}, betas)
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Source = -3
	cfg.Boundary = append(cfg.Boundary, BoundaryConfig{Edge: "north", From: 0, To: 1, Value: 0.5})

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tolerance: 0.001\ngrid:\n  nx: 20\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.001, cfg.Tolerance)
	assert.Equal(t, 20, cfg.Grid.NX)
	assert.Equal(t, DefaultNY, cfg.Grid.NY)
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations)
}

func TestLoadInto_OverlaysBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tolerance: 0.001\n"), 0644))

	cfg := GetPreset("small")
	require.NoError(t, LoadInto(path, cfg))
	assert.Equal(t, 0.001, cfg.Tolerance)
	assert.Equal(t, 12, cfg.Grid.NX)
	assert.Equal(t, 2000, cfg.MaxIterations)
	assert.Len(t, cfg.Boundary, 1)

	require.NoError(t, os.WriteFile(path, []byte("boundary:\n  - edge: north\n    from: 0\n    to: 1\n    value: 2\n"), 0644))
	require.NoError(t, LoadInto(path, cfg))
	require.Len(t, cfg.Boundary, 1)
	assert.Equal(t, "north", cfg.Boundary[0].Edge)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("POISSON_NX", "24")
	t.Setenv("POISSON_TOLERANCE", "1e-6")
	t.Setenv("POISSON_INTERIOR", "reference")
	t.Setenv("POISSON_SWEEP_FACTORS", "1.5,1.75")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 24, cfg.Grid.NX)
	assert.Equal(t, DefaultNY, cfg.Grid.NY)
	assert.Equal(t, 1e-6, cfg.Tolerance)
	assert.Equal(t, "reference", cfg.Interior)
	assert.Equal(t, []float64{1.5, 1.75}, cfg.Sweep.Factors)
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("small")
	require.NotNil(t, cfg)
	assert.Equal(t, 12, cfg.Grid.NX)
	require.NoError(t, cfg.Validate())

	cfg.Boundary[0].Value = 99
	assert.Equal(t, 1.0, Presets["small"].Boundary[0].Value)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	assert.Contains(t, names, "reference")
	for _, name := range names {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}
