// Package tui provides an interactive terminal dashboard for live solver
// monitoring.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MaykThewessen/highsmon/internal/analysis"
	"github.com/MaykThewessen/highsmon/internal/metrics"
	"github.com/MaykThewessen/highsmon/internal/monitor"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#353533"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44AAFF"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#33CC66"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// --- Messages ---

// EventMsg delivers a monitor event to the dashboard.
type EventMsg monitor.Event

// StatusMsg announces a terminal solver status.
type StatusMsg metrics.Status

// TickMsg triggers periodic UI updates.
type TickMsg time.Time

// DoneMsg signals the source has finished.
type DoneMsg struct{}

// --- Model ---

// Model is the bubbletea model for the solver dashboard.
type Model struct {
	mon    *monitor.Monitor
	source string

	width  int
	height int

	latest   *monitor.Event
	warnings []string // most recent warning lines
	status   metrics.Status
	done     bool

	// First-seen infeasibilities anchor the progress bars.
	basePrimal float64
	baseDual   float64

	primalBar progress.Model
	dualBar   progress.Model
}

// NewModel creates a dashboard model.
func NewModel(mon *monitor.Monitor, sourceName string) Model {
	return Model{
		mon:       mon,
		source:    sourceName,
		status:    metrics.StatusRunning,
		primalBar: progress.New(progress.WithDefaultGradient()),
		dualBar:   progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the tick timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := m.width - 30
		if barWidth < 10 {
			barWidth = 10
		}
		m.primalBar.Width = barWidth
		m.dualBar.Width = barWidth
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case EventMsg:
		ev := monitor.Event(msg)
		if m.latest == nil {
			m.basePrimal = ev.Metrics.PrimalInf
			m.baseDual = ev.Metrics.DualInf
		}
		m.latest = &ev
		if len(ev.Warnings) > 0 {
			m.warnings = append(m.warnings, ev.Warnings...)
			if len(m.warnings) > 5 {
				m.warnings = m.warnings[len(m.warnings)-5:]
			}
		}
		return m, nil

	case StatusMsg:
		m.status = metrics.Status(msg)
		m.done = true
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case DoneMsg:
		m.done = true
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sb strings.Builder

	title := titleStyle.Render(fmt.Sprintf(" highsmon | %s ", m.source))
	state := "RUNNING"
	if m.done {
		state = m.status.String()
	}
	statusText := statusBarStyle.Render(fmt.Sprintf(" %s  %d records ", state, m.mon.History().Len()))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(statusText)
	if gap < 0 {
		gap = 0
	}
	sb.WriteString(title + statusBarStyle.Render(strings.Repeat(" ", gap)) + statusText)
	sb.WriteString("\n\n")

	if m.latest == nil {
		sb.WriteString(labelStyle.Render("  Waiting for solver output..."))
		sb.WriteString("\n")
		return sb.String()
	}

	rec := m.latest.Metrics
	sb.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("Iteration:"), valueStyle.Render(fmt.Sprintf("%d", rec.Iteration))))
	obj := "N/A"
	if rec.Objective != nil {
		obj = fmt.Sprintf("%.6e", *rec.Objective)
	}
	sb.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("Objective:"), valueStyle.Render(obj)))

	runtime := rec.Timestamp.Sub(m.mon.StartTime())
	sb.WriteString(fmt.Sprintf("  %s %s\n\n", labelStyle.Render("Runtime:  "), valueStyle.Render(runtime.Round(time.Second).String())))

	sb.WriteString(fmt.Sprintf("  %s %.6e\n", labelStyle.Render("Primal inf:"), rec.PrimalInf))
	sb.WriteString("  " + m.primalBar.ViewAs(toleranceProgress(m.basePrimal, rec.PrimalInf)) + "\n")
	sb.WriteString(fmt.Sprintf("  %s %.6e\n", labelStyle.Render("Dual inf:  "), rec.DualInf))
	sb.WriteString("  " + m.dualBar.ViewAs(toleranceProgress(m.baseDual, rec.DualInf)) + "\n\n")

	if m.latest.Stats.PrimalRate != nil {
		sb.WriteString(fmt.Sprintf("  %s %.4f log10/iter\n", labelStyle.Render("Primal rate:"), *m.latest.Stats.PrimalRate))
	}
	if m.latest.Stats.DualRate != nil {
		sb.WriteString(fmt.Sprintf("  %s %.4f log10/iter\n", labelStyle.Render("Dual rate:  "), *m.latest.Stats.DualRate))
	}
	if m.latest.Stats.EstimatedCompletion != nil {
		eta := *m.latest.Stats.EstimatedCompletion
		sb.WriteString(fmt.Sprintf("  %s %s (%s remaining)\n",
			labelStyle.Render("ETA:        "),
			eta.Format("15:04:05"),
			eta.Sub(rec.Timestamp).Round(time.Second)))
	}

	sb.WriteString("\n")
	if len(m.warnings) > 0 {
		for _, w := range m.warnings {
			sb.WriteString("  " + warnStyle.Render("! "+w) + "\n")
		}
	} else {
		sb.WriteString("  " + okStyle.Render("No issues detected") + "\n")
	}

	sb.WriteString("\n" + helpStyle.Render("  [q]Quit"))
	return sb.String()
}

// toleranceProgress maps the log-scale distance covered from the first-seen
// infeasibility toward the convergence tolerance onto [0, 1].
func toleranceProgress(base, current float64) float64 {
	if base <= 0 || current <= 0 {
		return 0
	}
	if current <= analysis.Tolerance {
		return 1
	}
	span := math.Log10(base) - math.Log10(analysis.Tolerance)
	if span <= 0 {
		return 1
	}
	frac := (math.Log10(base) - math.Log10(current)) / span
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
