package batch

import (
	"go.uber.org/zap"

	"github.com/kingrea/roadgen/internal/runner"
	"github.com/kingrea/roadgen/internal/workflow"
)

// Observer receives progress events. Calls happen on the batch goroutine in
// pipeline order.
type Observer interface {
	SceneStarted(label string)
	StageStarted(label string, stage workflow.StageRef, cmd runner.Command)
	StageFinished(label string, stage workflow.StageRef, outcome workflow.Outcome, err error)
	SceneFinished(label string, row workflow.Row)
}

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) SceneStarted(label string) {
	for _, obs := range o {
		obs.SceneStarted(label)
	}
}

func (o Observers) StageStarted(label string, stage workflow.StageRef, cmd runner.Command) {
	for _, obs := range o {
		obs.StageStarted(label, stage, cmd)
	}
}

func (o Observers) StageFinished(label string, stage workflow.StageRef, outcome workflow.Outcome, err error) {
	for _, obs := range o {
		obs.StageFinished(label, stage, outcome, err)
	}
}

func (o Observers) SceneFinished(label string, row workflow.Row) {
	for _, obs := range o {
		obs.SceneFinished(label, row)
	}
}

// LogObserver reports progress through zap.
type LogObserver struct {
	Logger *zap.Logger
}

func (l LogObserver) SceneStarted(label string) {
	l.Logger.Info("generating scene", zap.String("scene", label))
}

func (l LogObserver) StageStarted(label string, stage workflow.StageRef, cmd runner.Command) {
	l.Logger.Info("running "+stage.Name,
		zap.String("scene", label),
		zap.String("cmd", cmd.String()),
	)
}

func (l LogObserver) StageFinished(label string, stage workflow.StageRef, outcome workflow.Outcome, err error) {
	if err != nil {
		l.Logger.Error(stage.Name+" FAILED",
			zap.String("scene", label),
			zap.Int("exit_code", runner.ExitCode(err)),
			zap.Error(err),
		)
		return
	}
	l.Logger.Info(stage.Name+" completed successfully", zap.String("scene", label))
}

func (l LogObserver) SceneFinished(label string, _ workflow.Row) {
	l.Logger.Info("scene completed", zap.String("scene", label))
}
