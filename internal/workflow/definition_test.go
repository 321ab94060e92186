package workflow

import (
	"reflect"
	"strings"
	"testing"
)

func TestTerrainPipelineIsValid(t *testing.T) {
	def := TerrainPipeline()
	if err := def.Validate(); err != nil {
		t.Fatalf("built-in pipeline invalid: %v", err)
	}
	want := []StageID{StageCoarse, StagePopulate, StageFine, StageRoad, StageExport}
	if got := def.StageIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("stage order = %v, want %v", got, want)
	}
}

func TestValidateRejectsMissingStages(t *testing.T) {
	err := Definition{ID: "empty"}.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least one stage is required") {
		t.Fatalf("unexpected error for missing stages: %v", err)
	}
}

func TestValidateRejectsForwardDependencies(t *testing.T) {
	def := Definition{
		ID: "forward",
		Stages: []StageRef{
			{ID: "a", DependsOn: []StageID{"b"}},
			{ID: "b"},
		},
	}
	err := def.Validate()
	if err == nil || !strings.Contains(err.Error(), "not declared before it") {
		t.Fatalf("unexpected error for forward dependency: %v", err)
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	dupStage := Definition{ID: "dup", Stages: []StageRef{{ID: "a"}, {ID: "a"}}}
	if err := dupStage.Validate(); err == nil {
		t.Fatalf("expected duplicate stage error")
	}
	dupDep := Definition{ID: "dup-dep", Stages: []StageRef{{ID: "a"}, {ID: "b", DependsOn: []StageID{"a", "a"}}}}
	if err := dupDep.Validate(); err == nil {
		t.Fatalf("expected duplicate dependency error")
	}
}

func TestBlockedByHonoursOptionalStages(t *testing.T) {
	def := TerrainPipeline()
	cases := []struct {
		name     string
		outcomes map[StageID]Outcome
		stage    StageID
		blocked  []StageID
	}{
		{"populate waits for coarse", map[StageID]Outcome{StageCoarse: OutcomeFailed}, StagePopulate, []StageID{StageCoarse}},
		{"fine after populate", map[StageID]Outcome{StageCoarse: OutcomeSuccess, StagePopulate: OutcomeSuccess}, StageFine, nil},
		{"road tolerates failed fine", map[StageID]Outcome{StagePopulate: OutcomeSuccess, StageFine: OutcomeFailed}, StageRoad, nil},
		{"road needs fine attempted", map[StageID]Outcome{StagePopulate: OutcomeSuccess}, StageRoad, []StageID{StageFine}},
		{"road blocked by populate", map[StageID]Outcome{StagePopulate: OutcomeFailed, StageFine: OutcomeFailed}, StageRoad, []StageID{StagePopulate}},
		{"export needs road", map[StageID]Outcome{StageRoad: OutcomeFailed}, StageExport, []StageID{StageRoad}},
		{"coarse never blocked", nil, StageCoarse, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lookup := func(id StageID) Outcome {
				if got, ok := tc.outcomes[id]; ok {
					return got
				}
				return OutcomeSkipped
			}
			got := def.BlockedBy(tc.stage, lookup)
			if !reflect.DeepEqual(got, tc.blocked) {
				t.Fatalf("BlockedBy(%s) = %v, want %v", tc.stage, got, tc.blocked)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	def := TerrainPipeline()
	clone := def.Clone()
	clone.Stages[3].DependsOn[0] = "mutated"
	if def.Stages[3].DependsOn[0] != StagePopulate {
		t.Fatalf("clone shares dependency slice with original")
	}
}
