package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/poisson/internal/config"
	"github.com/san-kum/poisson/internal/grid"
	"github.com/san-kum/poisson/internal/solver"
	"github.com/san-kum/poisson/internal/sweep"
)

const (
	metadataFile = "metadata.json"
	fieldFile    = "field.csv"

	KindSolve = "solve"
	KindSweep = "sweep"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type GridMetadata struct {
	NX int     `json:"nx"`
	NY int     `json:"ny"`
	LX float64 `json:"lx"`
	LY float64 `json:"ly"`
}

type SweepEntry struct {
	Beta       float64       `json:"beta"`
	Iterations int           `json:"iterations"`
	Status     string        `json:"status"`
	Residual   float64       `json:"residual"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// RunMetadata describes a stored run. For sweeps the top-level result
// fields describe the best factor.
type RunMetadata struct {
	ID            string        `json:"id"`
	Kind          string        `json:"kind"`
	Timestamp     time.Time     `json:"timestamp"`
	Grid          GridMetadata  `json:"grid"`
	Source        float64       `json:"source"`
	Tolerance     float64       `json:"tolerance"`
	MaxIterations int           `json:"max_iterations"`
	Interior      string        `json:"interior"`
	Mode          string        `json:"mode"`
	Beta          float64       `json:"beta"`
	Iterations    int           `json:"iterations"`
	Status        string        `json:"status"`
	Residual      float64       `json:"residual"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	History       []float64     `json:"history,omitempty"`
	Sweep         []SweepEntry  `json:"sweep,omitempty"`
	Best          int           `json:"best,omitempty"`
}

func newMetadata(kind string, cfg *config.Config) RunMetadata {
	return RunMetadata{
		ID:            fmt.Sprintf("%s_%s", kind, uuid.NewString()[:8]),
		Kind:          kind,
		Timestamp:     time.Now(),
		Grid:          GridMetadata{NX: cfg.Grid.NX, NY: cfg.Grid.NY, LX: cfg.Grid.LX, LY: cfg.Grid.LY},
		Source:        cfg.Source,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
		Interior:      cfg.Interior,
	}
}

// SaveResult stores a single solver run and returns its ID.
func (s *Store) SaveResult(cfg *config.Config, res *solver.Result) (string, error) {
	meta := newMetadata(KindSolve, cfg)
	meta.Mode = res.Mode.Rule.String()
	meta.Beta = res.Mode.Factor()
	meta.Iterations = res.Iterations
	meta.Status = res.Status.String()
	meta.Residual = res.Residual
	meta.Elapsed = res.Elapsed
	meta.History = res.History
	return meta.ID, s.save(meta, res.Field)
}

// SaveSweep stores the factor table and the field of the best run.
func (s *Store) SaveSweep(cfg *config.Config, table *sweep.Table) (string, error) {
	meta := newMetadata(KindSweep, cfg)
	best := table.BestRun()
	meta.Mode = solver.SOR.String()
	meta.Beta = best.Beta
	meta.Iterations = best.Iterations
	meta.Status = best.Status.String()
	meta.Residual = best.Residual
	meta.Elapsed = best.Elapsed
	meta.History = best.History
	meta.Best = table.Best
	meta.Sweep = make([]SweepEntry, len(table.Runs))
	for i, r := range table.Runs {
		meta.Sweep[i] = SweepEntry{
			Beta:       r.Beta,
			Iterations: r.Iterations,
			Status:     r.Status.String(),
			Residual:   r.Residual,
			Elapsed:    r.Elapsed,
		}
	}
	return meta.ID, s.save(meta, best.Field)
}

func (s *Store) save(meta RunMetadata, field *grid.Grid) error {
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if field == nil {
		return nil
	}

	csvFile, err := os.Create(filepath.Join(runDir, fieldFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	row := make([]string, field.NY)
	for i := 0; i < field.NX; i++ {
		for j, v := range field.Row(i) {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(a, b int) bool { return runs[a].Timestamp.Before(runs[b].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadField reads the stored field back into a grid with the run's extents.
func (s *Store) LoadField(runID string) (*grid.Grid, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read field %s: %w", runID, err)
	}

	values := make([][]float64, len(records))
	for i, record := range records {
		values[i] = make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("field %s [%d][%d]: %w", runID, i, j, err)
			}
			values[i][j] = v
		}
	}
	return grid.FromValues(values, meta.Grid.LX, meta.Grid.LY)
}
