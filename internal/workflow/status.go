package workflow

import "fmt"

// Outcome is the per-stage symbol shown in the summary table.
type Outcome string

const (
	OutcomeSuccess Outcome = "O"
	OutcomeFailed  Outcome = "X"
	OutcomeSkipped Outcome = "-"
)

// OutcomeOf maps a stage error to its symbol.
func OutcomeOf(err error) Outcome {
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeSuccess
}

// Row is one scene of the status table.
type Row struct {
	Label    string
	Outcomes []Outcome
}

// Table tracks outcomes per scene label and stage. It lives for a single run.
type Table struct {
	stages []StageRef
	order  []string
	cells  map[string]map[StageID]Outcome
}

// NewTable creates a table with a row per label, every cell set to "-".
func NewTable(stages []StageRef, labels ...string) *Table {
	t := &Table{
		stages: append([]StageRef(nil), stages...),
		cells:  make(map[string]map[StageID]Outcome, len(labels)),
	}
	for _, label := range labels {
		t.AddRow(label)
	}
	return t
}

// AddRow appends a row unless the label already exists.
func (t *Table) AddRow(label string) {
	if _, ok := t.cells[label]; ok {
		return
	}
	row := make(map[StageID]Outcome, len(t.stages))
	for _, stage := range t.stages {
		row[stage.ID] = OutcomeSkipped
	}
	t.cells[label] = row
	t.order = append(t.order, label)
}

// Set records the outcome of a stage for a scene.
func (t *Table) Set(label string, stage StageID, outcome Outcome) error {
	row, ok := t.cells[label]
	if !ok {
		return fmt.Errorf("workflow: unknown scene %s", label)
	}
	if _, ok := row[stage]; !ok {
		return fmt.Errorf("workflow: unknown stage %s", stage)
	}
	row[stage] = outcome
	return nil
}

// Get returns the recorded outcome, "-" for anything unknown.
func (t *Table) Get(label string, stage StageID) Outcome {
	if outcome, ok := t.cells[label][stage]; ok {
		return outcome
	}
	return OutcomeSkipped
}

// Stages returns the table columns.
func (t *Table) Stages() []StageRef {
	return append([]StageRef(nil), t.stages...)
}

// Labels returns the scene labels in insertion order.
func (t *Table) Labels() []string {
	return append([]string(nil), t.order...)
}

// Rows returns a snapshot of every row in insertion order.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.order))
	for _, label := range t.order {
		row := Row{Label: label, Outcomes: make([]Outcome, len(t.stages))}
		for i, stage := range t.stages {
			row.Outcomes[i] = t.cells[label][stage.ID]
		}
		rows = append(rows, row)
	}
	return rows
}

// Count returns how many cells hold outcome.
func (t *Table) Count(outcome Outcome) int {
	n := 0
	for _, row := range t.cells {
		for _, got := range row {
			if got == outcome {
				n++
			}
		}
	}
	return n
}
