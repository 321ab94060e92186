package workflow

import (
	"fmt"
	"sort"
)

// StageID identifies one step of the per-scene pipeline.
type StageID string

const (
	StageCoarse   StageID = "coarse"
	StagePopulate StageID = "populate"
	StageFine     StageID = "fine"
	StageRoad     StageID = "road"
	StageExport   StageID = "export"
)

// StageRef describes how a pipeline composes a stage.
type StageRef struct {
	ID StageID `json:"id" yaml:"id"`
	// Name is the human readable label used in logs ("Step 1 (Coarse Terrain)").
	Name string `json:"name" yaml:"name"`
	// Column is the summary table header; defaults to the ID.
	Column    string    `json:"column,omitempty" yaml:"column,omitempty"`
	DependsOn []StageID `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	// Optional stages do not block dependents when they fail; an attempted
	// optional stage counts as satisfied.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Header returns the summary column title.
func (ref StageRef) Header() string {
	if ref.Column != "" {
		return ref.Column
	}
	return string(ref.ID)
}

// Clone returns a deep copy of the stage reference.
func (ref StageRef) Clone() StageRef {
	clone := ref
	if len(ref.DependsOn) > 0 {
		clone.DependsOn = append([]StageID(nil), ref.DependsOn...)
	}
	return clone
}

// Validate ensures the reference is usable.
func (ref StageRef) Validate() error {
	if ref.ID == "" {
		return fmt.Errorf("workflow: stage id is required")
	}
	deps := make([]string, len(ref.DependsOn))
	for i, dep := range ref.DependsOn {
		deps[i] = string(dep)
	}
	sort.Strings(deps)
	for i := 1; i < len(deps); i++ {
		if deps[i] == deps[i-1] {
			return fmt.Errorf("workflow: stage %s has duplicate dependency on %s", ref.ID, deps[i])
		}
	}
	return nil
}

// Definition declares an ordered pipeline. Declaration order is execution
// order, so every dependency must point at an earlier stage.
type Definition struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Stages []StageRef `json:"stages" yaml:"stages"`
}

// Clone returns a deep copy of the definition.
func (def Definition) Clone() Definition {
	clone := Definition{ID: def.ID, Name: def.Name}
	if len(def.Stages) > 0 {
		clone.Stages = make([]StageRef, len(def.Stages))
		for i, ref := range def.Stages {
			clone.Stages[i] = ref.Clone()
		}
	}
	return clone
}

// Validate ensures the definition is self-consistent.
func (def Definition) Validate() error {
	if def.ID == "" {
		return fmt.Errorf("workflow: id is required")
	}
	if len(def.Stages) == 0 {
		return fmt.Errorf("workflow %s: at least one stage is required", def.ID)
	}
	seen := map[StageID]struct{}{}
	for idx, ref := range def.Stages {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("workflow %s stage[%d]: %w", def.ID, idx, err)
		}
		if _, exists := seen[ref.ID]; exists {
			return fmt.Errorf("workflow %s: duplicate stage id %s", def.ID, ref.ID)
		}
		for _, dep := range ref.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("workflow %s: stage %s depends on %s which is not declared before it", def.ID, ref.ID, dep)
			}
		}
		seen[ref.ID] = struct{}{}
	}
	return nil
}

// Stage looks up a stage by ID.
func (def Definition) Stage(id StageID) (StageRef, bool) {
	for _, ref := range def.Stages {
		if ref.ID == id {
			return ref, true
		}
	}
	return StageRef{}, false
}

// StageIDs returns the stage identifiers in declaration order.
func (def Definition) StageIDs() []StageID {
	ids := make([]StageID, 0, len(def.Stages))
	for _, ref := range def.Stages {
		ids = append(ids, ref.ID)
	}
	return ids
}

// BlockedBy reports which dependencies of id are not satisfied given the
// outcomes recorded so far. An empty result means the stage may run.
func (def Definition) BlockedBy(id StageID, outcome func(StageID) Outcome) []StageID {
	ref, ok := def.Stage(id)
	if !ok {
		return nil
	}
	var blocked []StageID
	for _, depID := range ref.DependsOn {
		dep, _ := def.Stage(depID)
		switch outcome(depID) {
		case OutcomeSuccess:
			continue
		case OutcomeFailed:
			if dep.Optional {
				continue
			}
		}
		blocked = append(blocked, depID)
	}
	return blocked
}

// TerrainPipeline is the built-in coarse → populate → fine → road → export
// sequence. Fine terrain is optional: when it fails the road and export
// stages fall back to the populated scene.
func TerrainPipeline() Definition {
	return Definition{
		ID:   "terrain",
		Name: "Terrain generation",
		Stages: []StageRef{
			{ID: StageCoarse, Name: "Step 1 (Coarse Terrain)", Column: "Coarse"},
			{ID: StagePopulate, Name: "Step 2 (Populate Assets)", Column: "Populate", DependsOn: []StageID{StageCoarse}},
			{ID: StageFine, Name: "Step 3 (Fine Terrain)", Column: "Fine", DependsOn: []StageID{StagePopulate}, Optional: true},
			{ID: StageRoad, Name: "Step 4 (Apply Road)", Column: "Road", DependsOn: []StageID{StagePopulate, StageFine}},
			{ID: StageExport, Name: "Step 5 (Export)", Column: "Export", DependsOn: []StageID{StageRoad}},
		},
	}
}
