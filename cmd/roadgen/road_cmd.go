package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/roadgen/internal/runner"
)

var roadCmd = &cobra.Command{
	Use:   "road <scene.blend>",
	Short: "Apply the road to a single scene",
	Long: `Render the road script into .roadgen/scripts and run it in the host
application against one scene file. The scene is rewritten in place.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := loadApp(os.Stdout)
		if err != nil {
			die("road: %v", err)
		}
		defer a.shutdown()

		script, err := installRoadScript(a.cfg)
		if err != nil {
			die("road: %v", err)
		}
		child, err := singleRoadCommand(a.cfg, script, args[0])
		if err != nil {
			die("road: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		a.logger.Info("applying road", zap.String("scene", args[0]), zap.String("cmd", child.String()))
		if err := runner.NewExec().Run(ctx, child); err != nil {
			a.logger.Error("road application failed", zap.Int("exit_code", runner.ExitCode(err)), zap.Error(err))
			a.shutdown()
			os.Exit(1)
		}
		a.logger.Info("road applied", zap.String("scene", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(roadCmd)
}
