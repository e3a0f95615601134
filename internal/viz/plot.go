package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/poisson/internal/sweep"
)

const (
	plotWidth  = 70
	plotHeight = 12
)

// IterationPlot draws iteration count against factor index.
func IterationPlot(t *sweep.Table) string {
	iters := t.Iterations()
	if len(iters) == 0 {
		return ""
	}
	first, last := t.Runs[0].Beta, t.Runs[len(t.Runs)-1].Beta
	caption := fmt.Sprintf("iterations vs beta (%.2f .. %.2f), best %.3f", first, last, t.BestRun().Beta)
	if len(iters) == 1 {
		iters = append(iters, iters[0])
	}
	return asciigraph.Plot(iters,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// ResidualPlot draws log10 of the residual history. Zero residuals are
// clamped to the smallest positive value seen.
func ResidualPlot(history []float64) string {
	if len(history) == 0 {
		return ""
	}
	floor := math.Inf(1)
	for _, r := range history {
		if r > 0 && r < floor {
			floor = r
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1e-300
	}

	data := make([]float64, len(history))
	for i, r := range history {
		data[i] = math.Log10(math.Max(r, floor))
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("log10 residual over %d sweeps", len(history))),
	)
}
