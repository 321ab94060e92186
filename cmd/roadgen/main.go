// cmd/roadgen/main.go
//
// Entry point for the roadgen CLI. Every subcommand resolves the project
// directory, makes sure .roadgen/ exists, loads config.yaml and builds a zap
// logger before doing any work.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/roadgen/internal/config"
	"github.com/kingrea/roadgen/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "roadgen",
	Short: "Generate terrain scenes with roads applied",
	Long: `roadgen drives a procedural terrain generator through coarse terrain,
asset population, fine terrain, road application and export, and prints a
per-stage summary for every scene.`,
	SilenceUsage: true,
}

var (
	projectFlag  string
	configFlag   string
	logLevelFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "project directory (defaults to cwd)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "explicit config file (defaults to .roadgen/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level override (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	close  func() error
}

// loadApp initialises the project directory, loads config and builds the
// logger. console nil disables console logging.
func loadApp(console io.Writer) (*app, error) {
	project := projectFlag
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		project = cwd
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitProjectDir(absoluteProject); err != nil {
		return nil, fmt.Errorf("init %s: %w", config.ProjectDirName, err)
	}
	cfg, err := config.Load(absoluteProject, configFlag)
	if err != nil {
		return nil, err
	}
	opts := loggingOptions(cfg)
	opts.Console = console
	logger, closeFn, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logger.Debug("config loaded", zap.String("path", cfg.Source))
	}
	return &app{cfg: cfg, logger: logger, close: closeFn}, nil
}

func loggingOptions(cfg *config.Config) logging.Options {
	opts := logging.DefaultOptions(cfg.LogsDir())
	lc := cfg.Project.Logging
	opts.Level = lc.Level
	if strings.TrimSpace(logLevelFlag) != "" {
		opts.Level = logLevelFlag
	}
	if lc.MaxSizeMB > 0 {
		opts.MaxSizeMB = lc.MaxSizeMB
	}
	if lc.MaxBackups > 0 {
		opts.MaxBackups = lc.MaxBackups
	}
	if lc.MaxAgeDays > 0 {
		opts.MaxAgeDays = lc.MaxAgeDays
	}
	return opts
}

func (a *app) shutdown() {
	if a.close != nil {
		_ = a.close()
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
