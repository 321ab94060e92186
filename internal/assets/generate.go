package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/roadgen/internal/generator"
	"github.com/kingrea/roadgen/internal/runner"
)

// Report summarises one catalog run.
type Report struct {
	Succeeded []string
	Failed    []string
	Elapsed   time.Duration
}

// Generator walks a catalog and invokes the individual-asset entry point
// once per entry.
type Generator struct {
	Command generator.Generator
	Runner  runner.Runner
	Logger  *zap.Logger
	// BaseDir receives <size>/<name>/ folders.
	BaseDir string
	// Count is the number of instances generated per entry.
	Count int

	clock func() time.Time
}

// NewGenerator fills defaults.
func NewGenerator(cmd generator.Generator, run runner.Runner, baseDir string, count int, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		Command: cmd,
		Runner:  run,
		Logger:  logger,
		BaseDir: baseDir,
		Count:   count,
		clock:   time.Now,
	}
}

// OutputDir is where an entry's files are written.
func (g *Generator) OutputDir(e Entry) string {
	return filepath.Join(g.BaseDir, e.Size, e.Name)
}

// Run generates every entry in order. A failing entry is logged and the loop
// continues; only cancellation or an unusable output folder stops it early.
func (g *Generator) Run(ctx context.Context, catalog Catalog) (Report, error) {
	if err := catalog.Validate(); err != nil {
		return Report{}, err
	}
	if g.Runner == nil {
		return Report{}, fmt.Errorf("assets: runner is required")
	}
	started := g.clock()
	g.Logger.Info("individual asset generation started", zap.Int("entries", len(catalog)))

	var report Report
	for _, e := range catalog {
		if err := ctx.Err(); err != nil {
			report.Elapsed = g.clock().Sub(started)
			return report, err
		}
		dir := g.OutputDir(e)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			report.Elapsed = g.clock().Sub(started)
			return report, fmt.Errorf("assets: prepare %s: %w", dir, err)
		}
		cmd := g.Command.IndividualAsset(dir, e.Factory, g.Count)
		g.Logger.Info("generating asset",
			zap.String("name", e.Name),
			zap.String("size", e.Size),
			zap.String("factory", e.Factory),
		)
		g.Logger.Debug("command", zap.String("cmd", cmd.String()))
		if err := g.Runner.Run(ctx, cmd); err != nil {
			g.Logger.Error("failed generating asset", zap.String("name", e.Name), zap.Error(err))
			report.Failed = append(report.Failed, e.Name)
			continue
		}
		g.Logger.Info("finished asset", zap.String("name", e.Name))
		report.Succeeded = append(report.Succeeded, e.Name)
	}
	report.Elapsed = g.clock().Sub(started)
	g.Logger.Info("individual asset generation completed",
		zap.Duration("elapsed", report.Elapsed),
		zap.Int("succeeded", len(report.Succeeded)),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}
