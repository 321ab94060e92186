// Package batch runs the terrain pipeline for a range of scene indices and
// collects a per-stage outcome for every scene.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/roadgen/internal/generator"
	"github.com/kingrea/roadgen/internal/road"
	"github.com/kingrea/roadgen/internal/runner"
	"github.com/kingrea/roadgen/internal/workflow"
)

// Request selects the scenes to generate.
type Request struct {
	Start int
	Count int
	// Seed passes the scene index as --seed to every generator stage.
	Seed bool
}

// RoadStage locates the rendered host script and how to launch it.
type RoadStage struct {
	Script   string
	Launcher road.Launcher
}

// Batch wires the pipeline definition to its collaborators.
type Batch struct {
	Definition workflow.Definition
	Generator  generator.Generator
	Layout     generator.Layout
	Road       RoadStage
	Runner     runner.Runner
	Observer   Observer
	Logger     *zap.Logger

	clock func() time.Time
}

// Option customizes a Batch.
type Option func(*Batch)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(b *Batch) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithObserver replaces the default log observer.
func WithObserver(obs Observer) Option {
	return func(b *Batch) {
		b.Observer = obs
	}
}

// New validates the definition and fills defaults.
func New(def workflow.Definition, gen generator.Generator, layout generator.Layout, roadStage RoadStage, run runner.Runner, logger *zap.Logger, opts ...Option) (*Batch, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("batch: runner is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Batch{
		Definition: def.Clone(),
		Generator:  gen,
		Layout:     layout,
		Road:       roadStage,
		Runner:     run,
		Logger:     logger,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.Observer == nil {
		b.Observer = LogObserver{Logger: logger}
	}
	return b, nil
}

// Run executes every stage for every requested scene, strictly in order. A
// failing stage never aborts the batch; its dependents stay "-" and the loop
// moves on. Cancellation stops the loop and returns the partial table with
// the context error.
func (b *Batch) Run(ctx context.Context, req Request) (*workflow.Table, error) {
	if req.Start < 0 {
		return nil, fmt.Errorf("batch: start index must be >= 0")
	}
	if req.Count < 0 {
		return nil, fmt.Errorf("batch: count must be >= 0")
	}
	labels := make([]string, req.Count)
	for i := range labels {
		labels[i] = generator.SceneLabel(req.Start + i)
	}
	table := workflow.NewTable(b.Definition.Stages, labels...)

	started := b.clock()
	b.Logger.Info("batch started",
		zap.String("pipeline", b.Definition.ID),
		zap.Int("start", req.Start),
		zap.Int("count", req.Count),
		zap.Bool("seed", req.Seed),
	)
	defer func() {
		b.Logger.Info("batch finished",
			zap.Duration("elapsed", b.clock().Sub(started)),
			zap.Int("succeeded", table.Count(workflow.OutcomeSuccess)),
			zap.Int("failed", table.Count(workflow.OutcomeFailed)),
		)
	}()

	for i, label := range labels {
		if err := ctx.Err(); err != nil {
			return table, err
		}
		if err := b.runScene(ctx, table, req.Start+i, label, req.Seed); err != nil {
			return table, err
		}
	}
	return table, nil
}

func (b *Batch) runScene(ctx context.Context, table *workflow.Table, index int, label string, seeded bool) error {
	b.Observer.SceneStarted(label)
	outcome := func(id workflow.StageID) workflow.Outcome {
		return table.Get(label, id)
	}
	seed := generator.SeedFor(index, seeded)
	for _, stage := range b.Definition.Stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if blocked := b.Definition.BlockedBy(stage.ID, outcome); len(blocked) > 0 {
			b.Logger.Debug("skipping stage",
				zap.String("scene", label),
				zap.String("stage", string(stage.ID)),
				zap.Any("blocked_by", blocked),
			)
			continue
		}
		cmd, err := b.command(stage.ID, label, seed, outcome)
		if err != nil {
			return err
		}
		b.Observer.StageStarted(label, stage, cmd)
		runErr := b.Runner.Run(ctx, cmd)
		result := workflow.OutcomeOf(runErr)
		if err := table.Set(label, stage.ID, result); err != nil {
			return err
		}
		b.Observer.StageFinished(label, stage, result, runErr)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	rows := table.Rows()
	for _, row := range rows {
		if row.Label == label {
			b.Observer.SceneFinished(label, row)
			break
		}
	}
	return nil
}

// sceneSource is the newest scene folder: fine terrain when it succeeded,
// otherwise the populated scene.
func (b *Batch) sceneSource(label string, outcome func(workflow.StageID) workflow.Outcome) string {
	if outcome(workflow.StageFine) == workflow.OutcomeSuccess {
		return b.Layout.FineDir(label)
	}
	return b.Layout.PopulateDir(label)
}

func (b *Batch) command(id workflow.StageID, label string, seed generator.Seed, outcome func(workflow.StageID) workflow.Outcome) (runner.Command, error) {
	switch id {
	case workflow.StageCoarse:
		return b.Generator.Coarse(b.Layout, label, seed), nil
	case workflow.StagePopulate:
		return b.Generator.Populate(b.Layout, label, seed), nil
	case workflow.StageFine:
		return b.Generator.Fine(b.Layout, label, seed), nil
	case workflow.StageRoad:
		scene := generator.SceneFile(b.sceneSource(label, outcome))
		return b.Road.Launcher.Command(b.Road.Script, scene)
	case workflow.StageExport:
		return b.Generator.ExportScene(b.sceneSource(label, outcome), b.Layout.ExportDir(label)), nil
	default:
		return runner.Command{}, fmt.Errorf("batch: no command for stage %s", id)
	}
}
