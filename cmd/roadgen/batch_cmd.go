package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/roadgen/internal/batch"
	"github.com/kingrea/roadgen/internal/generator"
	"github.com/kingrea/roadgen/internal/logging"
	"github.com/kingrea/roadgen/internal/runner"
	"github.com/kingrea/roadgen/internal/tui"
	"github.com/kingrea/roadgen/internal/workflow"
)

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

var batchOpts struct {
	numRuns  int
	startIdx int
	seed     bool
	seedInt  int
	useTUI   bool
}

// seedEnabled combines --seed with the integer form --s N, where any
// non-zero N turns seeding on.
func seedEnabled() bool {
	return batchOpts.seed || batchOpts.seedInt != 0
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate a range of terrain scenes with roads",
	Long: `Run coarse terrain, population, fine terrain, road application and export
for scenes start_idx .. start_idx+num_runs-1, then print the per-stage summary.
Failed stages are reported in the summary; the command still exits 0.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		useTUI := batchOpts.useTUI
		if useTUI && !isTerminal(os.Stdout) {
			fmt.Fprintln(os.Stderr, "stdout is not a terminal, falling back to plain output")
			useTUI = false
		}
		var console io.Writer = os.Stdout
		if useTUI {
			console = nil
		}
		a, err := loadApp(console)
		if err != nil {
			die("batch: %v", err)
		}
		defer a.shutdown()
		logger := a.logger.With(zap.String("run_id", uuid.NewString()))

		b, err := newBatch(a, logger, useTUI)
		if err != nil {
			die("batch: %v", err)
		}
		req := batch.Request{
			Start: batchOpts.startIdx,
			Count: batchOpts.numRuns,
			Seed:  seedEnabled(),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		started := time.Now()
		var table *workflow.Table
		if useTUI {
			table, err = runWithTUI(ctx, b, req)
		} else {
			table, err = b.Run(ctx, req)
		}
		if table != nil {
			fmt.Fprint(cmd.OutOrStdout(), workflow.RenderSummary(table))
		}
		elapsed := time.Since(started)
		fmt.Fprintf(cmd.OutOrStdout(), "Total time: %s\n", elapsed.Round(time.Second))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Warn("batch interrupted", zap.Duration("elapsed", elapsed))
				a.shutdown()
				os.Exit(exitInterrupted)
			}
			logger.Error("batch aborted", zap.Error(err))
			a.shutdown()
			os.Exit(1)
		}
	},
}

func newBatch(a *app, logger *zap.Logger, quiet bool) (*batch.Batch, error) {
	gen, err := newGenerator(a.cfg)
	if err != nil {
		return nil, err
	}
	launcher, err := newLauncher(a.cfg)
	if err != nil {
		return nil, err
	}
	script, err := installRoadScript(a.cfg)
	if err != nil {
		return nil, err
	}
	run := runner.NewExec()
	if quiet {
		// Child output would tear the progress view; keep it in a rotated file.
		sink := logging.RotatingFile(loggingOptions(a.cfg), logging.SubprocessLogFileName)
		run.Stdout = sink
		run.Stderr = sink
	}
	return batch.New(
		workflow.TerrainPipeline(),
		gen,
		newLayout(a.cfg),
		batch.RoadStage{Script: script, Launcher: launcher},
		run,
		logger,
	)
}

// runWithTUI runs the batch on a goroutine while the progress view owns the
// terminal. The view cancels the batch on ctrl+c and quits once it returns.
func runWithTUI(parent context.Context, b *batch.Batch, req batch.Request) (*workflow.Table, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var labels []string
	for i := 0; i < req.Count; i++ {
		labels = append(labels, generator.SceneLabel(req.Start+i))
	}
	model := tui.NewModel(b.Definition.Name, b.Definition.Stages, labels, cancel)
	// Bound to the signal context only: a ctrl+c inside the view cancels the
	// batch but the view stays up until the batch reports back.
	program := tea.NewProgram(model, tea.WithContext(parent))
	b.Observer = batch.Observers{batch.LogObserver{Logger: b.Logger}, tui.ProgramObserver{Program: program}}

	type result struct {
		table *workflow.Table
		err   error
	}
	done := make(chan result, 1)
	go func() {
		table, err := b.Run(ctx, req)
		done <- result{table: table, err: err}
		program.Send(tui.BatchDoneMsg{Err: err})
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		res := <-done
		return res.table, fmt.Errorf("progress view: %w", err)
	}
	cancel()
	res := <-done
	return res.table, res.err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.AddCommand(batchCmd)

	flags := batchCmd.Flags()
	flags.IntVar(&batchOpts.numRuns, "num_runs", 0, "number of scenes to generate")
	flags.IntVar(&batchOpts.startIdx, "start_idx", 0, "index of the first scene")
	flags.BoolVar(&batchOpts.seed, "seed", false, "pass the scene index as the generator seed")
	flags.IntVar(&batchOpts.seedInt, "s", 0, "integer form of --seed (non-zero enables)")
	flags.BoolVar(&batchOpts.useTUI, "tui", false, "show a live progress view")
	_ = flags.MarkHidden("s")
	_ = batchCmd.MarkFlagRequired("num_runs")
}
