package workflow

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	summaryBanner = "================ FINAL GENERATION SUMMARY ================"
	summaryFooter = "=========================================================="
	summaryLegend = "Legend: O = Success | X = Fail | - = Skipped"
)

var (
	outcomeStyleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	outcomeStyleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	outcomeStyleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	headerStyle         = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle           = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Center)
	borderStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// StyleOutcome colours an outcome symbol for terminal output.
func StyleOutcome(outcome Outcome) string {
	switch outcome {
	case OutcomeSuccess:
		return outcomeStyleSuccess.Render(string(outcome))
	case OutcomeFailed:
		return outcomeStyleFailed.Render(string(outcome))
	default:
		return outcomeStyleSkipped.Render(string(outcome))
	}
}

// RenderTable draws the status grid: a "Scene" column followed by one column
// per stage and one row per scene in insertion order.
func RenderTable(t *Table) string {
	stages := t.Stages()
	headers := make([]string, 0, len(stages)+1)
	headers = append(headers, "Scene")
	for _, stage := range stages {
		headers = append(headers, stage.Header())
	}
	grid := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
	for _, row := range t.Rows() {
		cells := make([]string, 0, len(row.Outcomes)+1)
		cells = append(cells, row.Label)
		for _, outcome := range row.Outcomes {
			cells = append(cells, StyleOutcome(outcome))
		}
		grid.Row(cells...)
	}
	return grid.String()
}

// RenderSummary wraps the status grid with the banner and legend printed at
// the end of a batch run.
func RenderSummary(t *Table) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(summaryBanner)
	b.WriteString("\n\n")
	b.WriteString(RenderTable(t))
	b.WriteString("\n\n")
	b.WriteString(summaryLegend)
	b.WriteString("\n")
	b.WriteString(summaryFooter)
	b.WriteString("\n")
	return b.String()
}
