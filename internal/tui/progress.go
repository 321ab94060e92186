// Package tui renders a live view of a running batch.
//
// The batch runs on its own goroutine and reports through ProgramObserver,
// which turns every event into a bubbletea message. The model keeps its own
// copy of the outcome table so the view never reads state owned by the batch.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/kingrea/roadgen/internal/batch"
	"github.com/kingrea/roadgen/internal/runner"
	"github.com/kingrea/roadgen/internal/workflow"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// Messages sent by ProgramObserver.
type (
	SceneStartedMsg struct {
		Label string
	}
	StageStartedMsg struct {
		Label   string
		Stage   workflow.StageRef
		Command string
	}
	StageFinishedMsg struct {
		Label   string
		Stage   workflow.StageRef
		Outcome workflow.Outcome
		Err     error
	}
	SceneFinishedMsg struct {
		Label string
	}
	// BatchDoneMsg ends the program.
	BatchDoneMsg struct {
		Err error
	}
)

// Model is the bubbletea model for the batch view.
type Model struct {
	title   string
	table   *workflow.Table
	spinner spinner.Model
	cancel  func()

	scene    string
	stage    workflow.StageRef
	command  string
	running  bool
	lastErr  string
	finished int
	total    int

	started     time.Time
	now         func() time.Time
	done        bool
	interrupted bool
	err         error
	width       int
}

// NewModel builds a view for the given stages and scene labels. cancel is
// invoked when the user interrupts; it may be nil.
func NewModel(title string, stages []workflow.StageRef, labels []string, cancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle
	return Model{
		title:   title,
		table:   workflow.NewTable(stages, labels...),
		spinner: s,
		cancel:  cancel,
		total:   len(labels),
		started: time.Now(),
		now:     time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.done {
				return m, tea.Quit
			}
			if m.cancel == nil {
				m.interrupted = true
				return m, tea.Quit
			}
			if !m.interrupted {
				m.interrupted = true
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case SceneStartedMsg:
		m.scene = msg.Label
		m.running = false
		return m, nil
	case StageStartedMsg:
		m.scene = msg.Label
		m.stage = msg.Stage
		m.command = msg.Command
		m.running = true
		return m, nil
	case StageFinishedMsg:
		m.running = false
		_ = m.table.Set(msg.Label, msg.Stage.ID, msg.Outcome)
		if msg.Err != nil {
			m.lastErr = fmt.Sprintf("%s %s: %v", msg.Label, msg.Stage.Name, msg.Err)
		}
		return m, nil
	case SceneFinishedMsg:
		m.finished++
		return m, nil
	case BatchDoneMsg:
		m.done = true
		m.running = false
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(fmt.Sprintf("%d/%d scenes  elapsed %s", m.finished, m.total, m.now().Sub(m.started).Round(time.Second))))
	b.WriteString("\n\n")
	b.WriteString(workflow.RenderTable(m.table))
	b.WriteString("\n\n")
	switch {
	case m.running:
		b.WriteString(fmt.Sprintf("%s scene %s  %s\n", m.spinner.View(), m.scene, runningStyle.Render(m.stage.Name)))
		if m.command != "" {
			b.WriteString(detailStyle.Render(truncate(m.command, m.width)))
			b.WriteString("\n")
		}
	case m.done:
		b.WriteString("Batch finished.\n")
	}
	if m.lastErr != "" {
		b.WriteString(failStyle.Render("last failure: " + m.lastErr))
		b.WriteString("\n")
	}
	if m.interrupted && !m.done {
		b.WriteString(runningStyle.Render("Interrupting, waiting for the current stage to stop..."))
		b.WriteString("\n")
	} else if !m.done {
		b.WriteString(helpStyle.Render("ctrl+c to interrupt"))
		b.WriteString("\n")
	}
	return b.String()
}

// Table returns the outcome table as seen by the view.
func (m Model) Table() *workflow.Table {
	return m.table
}

// Interrupted reports whether the user asked to stop.
func (m Model) Interrupted() bool {
	return m.interrupted
}

// truncate shortens s to width terminal cells without splitting runes.
func truncate(s string, width int) string {
	if width <= 3 {
		return s
	}
	return ansi.Truncate(s, width, "...")
}

// Sender is the part of *tea.Program the observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver forwards batch events to a running program.
type ProgramObserver struct {
	Program Sender
}

var _ batch.Observer = ProgramObserver{}

func (p ProgramObserver) SceneStarted(label string) {
	p.Program.Send(SceneStartedMsg{Label: label})
}

func (p ProgramObserver) StageStarted(label string, stage workflow.StageRef, cmd runner.Command) {
	p.Program.Send(StageStartedMsg{Label: label, Stage: stage.Clone(), Command: cmd.String()})
}

func (p ProgramObserver) StageFinished(label string, stage workflow.StageRef, outcome workflow.Outcome, err error) {
	p.Program.Send(StageFinishedMsg{Label: label, Stage: stage.Clone(), Outcome: outcome, Err: err})
}

func (p ProgramObserver) SceneFinished(label string, _ workflow.Row) {
	p.Program.Send(SceneFinishedMsg{Label: label})
}
