package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/roadgen/internal/assets"
	"github.com/kingrea/roadgen/internal/runner"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Generate individual road-side assets",
	Long: `Run the individual asset generator once per catalog entry. Each entry is
written to <output_dir>/<size>/<name>. A failing entry is logged and the
remaining entries still run.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		only, _ := cmd.Flags().GetStringSlice("only")
		count, _ := cmd.Flags().GetInt("number")

		a, err := loadApp(os.Stdout)
		if err != nil {
			die("assets: %v", err)
		}
		defer a.shutdown()
		logger := a.logger.With(zap.String("run_id", uuid.NewString()))

		catalog, err := assets.CatalogFromConfig(a.cfg.Project.Assets).Filter(only)
		if err != nil {
			die("assets: %v", err)
		}
		if count <= 0 {
			count = a.cfg.Project.Assets.Count
		}
		gen, err := newGenerator(a.cfg)
		if err != nil {
			die("assets: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		g := assets.NewGenerator(gen, runner.NewExec(), a.cfg.Project.Assets.OutputDir, count, logger)
		report, err := g.Run(ctx, catalog)
		fmt.Fprintf(cmd.OutOrStdout(), "\nGenerated %d/%d assets in %s\n", len(report.Succeeded), len(catalog), report.Elapsed.Round(time.Second))
		if len(report.Failed) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Failed: %v\n", report.Failed)
		}
		if err != nil {
			logger.Error("asset generation stopped", zap.Error(err))
			a.shutdown()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(assetsCmd)

	assetsCmd.Flags().StringSlice("only", nil, "comma separated catalog entries to generate (default all)")
	assetsCmd.Flags().IntP("number", "n", 0, "instances per entry (default from config)")
}
