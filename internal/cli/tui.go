package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/pipeline"
	"github.com/provgraph/provis/pkg/prov"
)

// Progress styles
var (
	styleBarFilled = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarEmpty  = lipgloss.NewStyle().Foreground(colorDim)
	styleBarLabel  = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// progressModel - Live layout progress
// =============================================================================

// progressMsg reports one finished layout task.
type progressMsg struct {
	done  int
	total int
	label string
}

// doneMsg reports that the whole computation finished.
type doneMsg struct {
	err error
}

// progressModel is the bubbletea model behind 'layout --tui'. It renders
// a task counter and bar fed by the engine's progress callback.
type progressModel struct {
	strategy string
	started  time.Time

	done  int
	total int
	label string
	width int

	finished bool
	err      error
}

// newProgressModel creates a progress model for one layout run.
func newProgressModel(strategy string) progressModel {
	return progressModel{
		strategy: strategy,
		started:  time.Now(),
		width:    60,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case progressMsg:
		m.done = msg.done
		m.total = msg.total
		m.label = msg.label
	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Computing %s layout", m.strategy)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q cancel"))
	b.WriteString("\n\n")

	b.WriteString("  ")
	b.WriteString(m.renderBar())
	b.WriteString("\n\n")

	switch {
	case m.finished && m.err != nil:
		b.WriteString("  " + StyleWarning.Render("aborting..."))
	case m.finished:
		b.WriteString("  " + StyleSuccess.Render("done"))
	case m.label != "":
		b.WriteString("  " + styleBarLabel.Render(m.label))
	default:
		b.WriteString("  " + styleBarLabel.Render("collapsing graph..."))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s elapsed", time.Since(m.started).Round(time.Second))))
	b.WriteString("\n")

	return b.String()
}

// renderBar draws the task bar sized to the current terminal width.
func (m progressModel) renderBar() string {
	barWidth := m.width - 20
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 60 {
		barWidth = 60
	}

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	filled := int(frac * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	bar := styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %d/%d", bar, m.done, m.total)
}

// =============================================================================
// TUI Runner
// =============================================================================

type layoutOutcome struct {
	store    *layout.Store
	cacheHit bool
	err      error
}

// runLayoutTUI computes the layout behind a live progress view. Quitting
// the view cancels the computation.
func (c *CLI) runLayoutTUI(ctx context.Context, runner *pipeline.Runner, g *prov.Graph, opts pipeline.Options) (*layout.Store, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(opts.Strategy))

	// p.Send is safe from other goroutines, so the engine workers can
	// report straight into the program.
	opts.Progress = func(done, total int, label string) {
		p.Send(progressMsg{done: done, total: total, label: label})
	}

	results := make(chan layoutOutcome, 1)
	go func() {
		store, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
		results <- layoutOutcome{store: store, cacheHit: cacheHit, err: err}
		p.Send(doneMsg{err: err})
	}()

	_, runErr := p.Run()
	cancel() // quitting the view aborts a still-running computation
	res := <-results
	if runErr != nil {
		return nil, false, runErr
	}
	return res.store, res.cacheHit, res.err
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
