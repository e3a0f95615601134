// Package tui shows a parameter sweep filling in while it runs.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/san-kum/poisson/internal/experiment"
	"github.com/san-kum/poisson/internal/sweep"
	"github.com/san-kum/poisson/internal/viz"
)

var ErrAborted = errors.New("tui: sweep view closed before completion")

const barWidth = 40

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type runMsg struct {
	index int
	run   sweep.Run
}

type doneMsg struct {
	table *sweep.Table
	err   error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// SweepModel is the bubbletea model behind RunSweep.
type SweepModel struct {
	betas   []float64
	runs    []*sweep.Run
	done    int
	table   *sweep.Table
	err     error
	started time.Time
	frame   int
}

func NewSweepModel(betas []float64) SweepModel {
	return SweepModel{
		betas:   betas,
		runs:    make([]*sweep.Run, len(betas)),
		started: time.Now(),
	}
}

func (m SweepModel) Init() tea.Cmd { return tick() }

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case runMsg:
		if msg.index >= 0 && msg.index < len(m.runs) && m.runs[msg.index] == nil {
			run := msg.run
			m.runs[msg.index] = &run
			m.done++
		}
	case doneMsg:
		m.table, m.err = msg.table, msg.err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m SweepModel) finished() bool { return m.table != nil || m.err != nil }

func (m SweepModel) View() string {
	var b strings.Builder
	b.WriteString(viz.Title.Render("SOR relaxation factor sweep"))
	b.WriteString("\n\n")
	b.WriteString(viz.ProgressBar(m.done, len(m.betas), barWidth))
	b.WriteString(fmt.Sprintf(" %d/%d  %s\n\n", m.done, len(m.betas), time.Since(m.started).Round(time.Millisecond)))

	best := -1
	if m.table != nil {
		best = m.table.Best
	}
	for i, beta := range m.betas {
		r := m.runs[i]
		switch {
		case r == nil:
			b.WriteString(viz.Subtle.Render(fmt.Sprintf("  β=%.3f  %s", beta, spinner[(m.frame+i)%len(spinner)])))
		case i == best:
			b.WriteString(viz.BestRow.Render(fmt.Sprintf("* β=%.3f  %6d  %s", beta, r.Iterations, r.Status)))
		default:
			b.WriteString(fmt.Sprintf("  β=%.3f  %6d  %s", beta, r.Iterations, r.Status))
		}
		b.WriteByte('\n')
	}

	if m.err != nil {
		b.WriteString("\n" + viz.StatusWarn.Render("error: "+m.err.Error()) + "\n")
	} else if !m.finished() {
		b.WriteString("\n" + viz.Subtle.Render("q to quit") + "\n")
	}
	return b.String()
}

// Table returns the finished sweep, or nil while running.
func (m SweepModel) Table() *sweep.Table { return m.table }

// RunSweep runs the experiment's factor scan behind the live view and
// returns its table once every factor has finished. Solver and sweep logging
// is silenced while the view owns the terminal.
func RunSweep(ctx context.Context, exp *experiment.Experiment, opts ...tea.ProgramOption) (*sweep.Table, error) {
	betas, err := exp.Config().Factors()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewSweepModel(betas), opts...)

	go func() {
		table, err := exp.Sweep(ctx,
			sweep.WithLogger(zap.NewNop()),
			sweep.WithProgress(func(i int, r sweep.Run) {
				p.Send(runMsg{index: i, run: r})
			}))
		p.Send(doneMsg{table: table, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(SweepModel)
	if m.err != nil {
		return nil, m.err
	}
	if m.table == nil {
		return nil, ErrAborted
	}
	return m.table, nil
}
