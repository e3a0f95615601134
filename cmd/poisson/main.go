package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/poisson/internal/config"
	"github.com/san-kum/poisson/internal/experiment"
	"github.com/san-kum/poisson/internal/solver"
	"github.com/san-kum/poisson/internal/storage"
	"github.com/san-kum/poisson/internal/tui"
	"github.com/san-kum/poisson/internal/viz"
)

var (
	logger *zap.Logger

	dataDir    string
	configFile string
	preset     string
	verbose    bool

	// problem overrides, applied only when set on the command line
	nx, ny        int
	lx, ly        float64
	source        float64
	tolerance     float64
	maxIterations int
	interior      string
	workers       int

	beta       float64
	sweepStart float64
	sweepStop  float64
	sweepStep  float64
	factors    []float64

	save      bool
	plot      bool
	heatWidth int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "poisson",
		Short:        "relaxation solvers for the 2D Poisson equation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".poisson", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.IntVar(&nx, "nx", config.DefaultNX, "grid points along x")
	pf.IntVar(&ny, "ny", config.DefaultNY, "grid points along y")
	pf.Float64Var(&lx, "lx", config.DefaultLX, "domain length along x")
	pf.Float64Var(&ly, "ly", config.DefaultLY, "domain length along y")
	pf.Float64Var(&source, "source", 0, "uniform source term S")
	pf.Float64Var(&tolerance, "tol", config.DefaultTolerance, "convergence tolerance")
	pf.IntVar(&maxIterations, "max-iter", config.DefaultMaxIterations, "iteration budget per run")
	pf.StringVar(&interior, "interior", "full", "interior bound: full or reference")
	pf.IntVar(&workers, "workers", 1, "parallel workers")

	solveCmd := &cobra.Command{
		Use:   "solve [jacobi|gauss-seidel|sor]",
		Short: "solve with one update rule",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().Float64Var(&beta, "beta", 1.5, "relaxation factor (sor)")
	solveCmd.Flags().BoolVar(&save, "save", false, "store the run")
	solveCmd.Flags().BoolVar(&plot, "plot", false, "plot residual history and field")
	solveCmd.Flags().IntVar(&heatWidth, "width", 60, "heatmap width")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "scan SOR relaxation factors",
		RunE:  runSweep,
	}
	addSweepFlags(sweepCmd)
	sweepCmd.Flags().BoolVar(&save, "save", false, "store the sweep")
	sweepCmd.Flags().BoolVar(&plot, "plot", false, "plot iterations against beta")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare jacobi, gauss-seidel and the best sor factor",
		RunE:  runCompare,
	}
	addSweepFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the factor sweep with a live view",
		RunE:  runLive,
	}
	addSweepFlags(liveCmd)
	liveCmd.Flags().BoolVar(&save, "save", false, "store the sweep")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&heatWidth, "width", 60, "heatmap width")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and field as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tSOURCE\tTOL\tINTERIOR")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%g\t%g\t%s\n", name, p.Grid.NX, p.Grid.NY, p.Source, p.Tolerance, p.Interior)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}

	rootCmd.AddCommand(solveCmd, sweepCmd, compareCmd, liveCmd, listCmd, showCmd, exportJSONCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&sweepStart, "start", config.DefaultSweepStart, "first factor")
	cmd.Flags().Float64Var(&sweepStop, "stop", config.DefaultSweepStop, "factor bound (exclusive)")
	cmd.Flags().Float64Var(&sweepStep, "step", config.DefaultSweepStep, "factor increment")
	cmd.Flags().Float64SliceVar(&factors, "factors", nil, "explicit factor list (overrides range)")
}

// loadConfig layers preset, config file, environment and flags, in that
// order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("nx") {
		cfg.Grid.NX = nx
	}
	if flags.Changed("ny") {
		cfg.Grid.NY = ny
	}
	if flags.Changed("lx") {
		cfg.Grid.LX = lx
	}
	if flags.Changed("ly") {
		cfg.Grid.LY = ly
	}
	if flags.Changed("source") {
		cfg.Source = source
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("max-iter") {
		cfg.MaxIterations = maxIterations
	}
	if flags.Changed("interior") {
		cfg.Interior = interior
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Lookup("start") != nil {
		if flags.Changed("start") {
			cfg.Sweep.Start = sweepStart
		}
		if flags.Changed("stop") {
			cfg.Sweep.Stop = sweepStop
		}
		if flags.Changed("step") {
			cfg.Sweep.Step = sweepStep
		}
		if flags.Changed("factors") {
			cfg.Sweep.Factors = factors
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newExperiment(cmd *cobra.Command) (*experiment.Experiment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return experiment.New(cfg, logger)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	mode, err := solver.ParseMode(args[0], beta)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}

	res, err := exp.Solve(mode, solver.WithObserver(sweepTrace(logger)))
	if err != nil {
		return err
	}

	fmt.Println(viz.ResultSummary(res))
	if plot {
		fmt.Println()
		fmt.Println(viz.ResidualPlot(res.History))
		fmt.Println()
		fmt.Println(viz.Heatmap(res.Field, heatWidth))
	}

	if save {
		st, err := openStore()
		if err != nil {
			return err
		}
		id, err := st.SaveResult(exp.Config(), res)
		if err != nil {
			return err
		}
		fmt.Printf("saved run: %s\n", id)
	}
	return nil
}

// sweepTrace logs every sweep's residual at debug level.
func sweepTrace(l *zap.Logger) solver.Observer {
	return solver.ObserverFunc(func(mode solver.Mode, iteration int, residual float64) {
		if ce := l.Check(zapcore.DebugLevel, "sweep"); ce != nil {
			ce.Write(
				zap.Stringer("mode", mode),
				zap.Int("iteration", iteration),
				zap.Float64("residual", residual))
		}
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}

	table, err := exp.Sweep(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(viz.SweepTable(table))
	best := table.BestRun()
	fmt.Printf("best beta: %.3f (%d iterations)\n", best.Beta, best.Iterations)
	if plot {
		fmt.Println()
		fmt.Println(viz.IterationPlot(table))
	}

	if save {
		st, err := openStore()
		if err != nil {
			return err
		}
		id, err := st.SaveSweep(exp.Config(), table)
		if err != nil {
			return err
		}
		fmt.Printf("saved run: %s\n", id)
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}

	report, err := exp.Compare(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(viz.CompareTable(report.Jacobi, report.GaussSeidel, report.Sweep))
	jg, gs := report.Speedups()
	fmt.Println(viz.Metric("jacobi / gauss-seidel  ", fmt.Sprintf("%.2fx", jg)))
	fmt.Println(viz.Metric("gauss-seidel / best sor", fmt.Sprintf("%.2fx", gs)))
	fmt.Println()
	fmt.Println(viz.IterationPlot(report.Sweep))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}

	table, err := tui.RunSweep(context.Background(), exp)
	if err != nil {
		return err
	}

	if save {
		st, err := openStore()
		if err != nil {
			return err
		}
		id, err := st.SaveSweep(exp.Config(), table)
		if err != nil {
			return err
		}
		fmt.Printf("saved run: %s\n", id)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tGRID\tMODE\tBETA\tITERS\tSTATUS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%.3f\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.NX, run.Grid.NY,
			run.Mode,
			run.Beta,
			run.Iterations,
			run.Status,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	field, err := st.LoadField(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(meta.ID))
	fmt.Println(viz.Metric("mode      ", fmt.Sprintf("%s (beta %.3f)", meta.Mode, meta.Beta)))
	fmt.Println(viz.Metric("iterations", fmt.Sprintf("%d", meta.Iterations)))
	fmt.Println(viz.Metric("status    ", meta.Status))
	fmt.Println()

	if len(meta.Sweep) > 0 {
		iters := make([]float64, len(meta.Sweep))
		for i, e := range meta.Sweep {
			iters[i] = float64(e.Iterations)
		}
		fmt.Println(viz.Sparkline(iters, len(iters)) + "  iterations per factor")
	}
	if len(meta.History) > 0 {
		fmt.Println(viz.ResidualPlot(meta.History))
		fmt.Println()
	}
	fmt.Println(viz.Heatmap(field, heatWidth))
	return nil
}
