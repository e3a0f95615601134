package viz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/poisson/internal/solver"
	"github.com/san-kum/poisson/internal/sweep"
)

func statusCell(s solver.Status) string {
	if s == solver.StatusConverged {
		return StatusOK.Render(s.String())
	}
	return StatusWarn.Render(s.String())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Subtle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle(row) })
}

func cellStyle(row int) lipgloss.Style {
	if row == table.HeaderRow {
		return HeaderStyle
	}
	return lipgloss.NewStyle().Padding(0, 1)
}

// SweepTable lists every factor of t and marks the best one.
func SweepTable(t *sweep.Table) string {
	tbl := newTable("", "BETA", "ITERATIONS", "STATUS", "RESIDUAL", "TIME")
	for i, r := range t.Runs {
		mark := ""
		if i == t.Best {
			mark = "*"
		}
		tbl.Row(mark,
			strconv.FormatFloat(r.Beta, 'f', 3, 64),
			strconv.Itoa(r.Iterations),
			statusCell(r.Status),
			fmt.Sprintf("%.3e", r.Residual),
			r.Elapsed.Round(time.Microsecond).String(),
		)
	}
	tbl.StyleFunc(func(row, col int) lipgloss.Style {
		s := cellStyle(row)
		if row == t.Best {
			return s.Inherit(BestRow)
		}
		return s
	})
	return tbl.String()
}

// CompareTable summarises the three update rules on one problem.
func CompareTable(jacobi, gaussSeidel *solver.Result, t *sweep.Table) string {
	best := t.BestRun()
	tbl := newTable("METHOD", "BETA", "ITERATIONS", "STATUS", "TIME")
	tbl.Row("jacobi", "-", strconv.Itoa(jacobi.Iterations), statusCell(jacobi.Status), jacobi.Elapsed.Round(time.Microsecond).String())
	tbl.Row("gauss-seidel", "1.000", strconv.Itoa(gaussSeidel.Iterations), statusCell(gaussSeidel.Status), gaussSeidel.Elapsed.Round(time.Microsecond).String())
	tbl.Row("sor (best)", strconv.FormatFloat(best.Beta, 'f', 3, 64), strconv.Itoa(best.Iterations), statusCell(best.Status), best.Elapsed.Round(time.Microsecond).String())
	return tbl.String()
}

// ResultSummary renders the headline numbers of one run.
func ResultSummary(r *solver.Result) string {
	lines := []string{
		Title.Render(r.Mode.String()),
		Metric("status    ", statusCell(r.Status)),
		Metric("iterations", strconv.Itoa(r.Iterations)),
		Metric("residual  ", fmt.Sprintf("%.3e", r.Residual)),
		Metric("elapsed   ", r.Elapsed.Round(time.Microsecond).String()),
	}
	if lo, hi := r.Field.Range(); hi > lo {
		lines = append(lines, Metric("range     ", fmt.Sprintf("[%.4g, %.4g]", lo, hi)))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}
