package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/poisson/internal/config"
	"github.com/san-kum/poisson/internal/solver"
	"github.com/san-kum/poisson/internal/sweep"
)

func smallRun(t *testing.T) (*config.Config, *solver.Result) {
	t.Helper()
	cfg := config.GetPreset("small")
	g, err := cfg.BuildGrid()
	require.NoError(t, err)

	s, err := solver.New(solver.SORMode(1.4), cfg.SolverConfig())
	require.NoError(t, err)
	res, err := s.Solve(g)
	require.NoError(t, err)
	return cfg, res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, res := smallRun(t)
	runID, err := st.SaveResult(cfg, res)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, KindSolve, meta.Kind)
	assert.Equal(t, "sor", meta.Mode)
	assert.Equal(t, 1.4, meta.Beta)
	assert.Equal(t, res.Iterations, meta.Iterations)
	assert.Equal(t, "converged", meta.Status)
	assert.Equal(t, res.History, meta.History)
	assert.Equal(t, 12, meta.Grid.NX)

	field, err := st.LoadField(runID)
	require.NoError(t, err)
	assert.Equal(t, res.Field.Values(), field.Values())
	assert.Equal(t, res.Field.DX, field.DX)
}

func TestStoreSaveSweep(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.GetPreset("small")
	g, err := cfg.BuildGrid()
	require.NoError(t, err)
	table, err := sweep.New(cfg.SolverConfig()).Run(t.Context(), g, []float64{1.0, 1.5, 1.7})
	require.NoError(t, err)

	runID, err := st.SaveSweep(cfg, table)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, KindSweep, meta.Kind)
	require.Len(t, meta.Sweep, 3)
	assert.Equal(t, table.Best, meta.Best)
	assert.Equal(t, table.BestRun().Beta, meta.Beta)
	for i, e := range meta.Sweep {
		assert.Equal(t, table.Runs[i].Iterations, e.Iterations)
	}

	field, err := st.LoadField(runID)
	require.NoError(t, err)
	assert.Equal(t, table.BestRun().Field.Values(), field.Values())
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	cfg, res := smallRun(t)
	first, err := st.SaveResult(cfg, res)
	require.NoError(t, err)
	second, err := st.SaveResult(cfg, res)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// stray directories without metadata are ignored
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.False(t, runs[1].Timestamp.Before(runs[0].Timestamp))
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	cfg, res := smallRun(t)
	runID, err := st.SaveResult(cfg, res)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(tmpDir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(tmpDir, runID, "field.csv"))
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, res := smallRun(t)
	runID, err := st.SaveResult(cfg, res)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID))

	var out ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, runID, out.ID)
	assert.Equal(t, res.Field.Values(), out.Field)
}

func TestLoad_Unknown(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.Error(t, err)
	_, err = st.LoadField("nope")
	assert.Error(t, err)
}
