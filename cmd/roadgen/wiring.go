package main

import (
	"fmt"
	"path/filepath"

	"github.com/kingrea/roadgen/internal/config"
	"github.com/kingrea/roadgen/internal/generator"
	"github.com/kingrea/roadgen/internal/road"
	"github.com/kingrea/roadgen/internal/runner"
)

// newGenerator builds the command factory for the configured generator.
func newGenerator(cfg *config.Config) (generator.Generator, error) {
	python, err := cfg.PythonCommand()
	if err != nil {
		return generator.Generator{}, err
	}
	pc := cfg.Project
	return generator.Generator{
		Python:      python,
		Workdir:     pc.Generator.Workdir,
		Module:      pc.Generator.Module,
		Configs:     append([]string(nil), pc.Generator.Configs...),
		FineConfigs: append([]string(nil), pc.Generator.FineConfigs...),
		Export: generator.ExportOptions{
			Module:     pc.Export.Module,
			Format:     pc.Export.Format,
			Resolution: pc.Export.Resolution,
			Omniverse:  pc.Export.Omniverse,
		},
		Assets: generator.AssetOptions{
			Module: pc.Assets.Module,
			Format: pc.Assets.Format,
		},
	}, nil
}

func newLayout(cfg *config.Config) generator.Layout {
	return generator.Layout{Root: cfg.Project.Layout.OutputRoot, Prefix: cfg.Project.Layout.Prefix}
}

// newLauncher runs the road script from the generator workdir so relative
// scene paths resolve the same way they do for the generator stages.
func newLauncher(cfg *config.Config) (road.Launcher, error) {
	python, err := cfg.PythonCommand()
	if err != nil {
		return road.Launcher{}, err
	}
	return road.Launcher{
		Mode:    cfg.Project.Road.Launcher,
		Python:  python,
		Blender: cfg.Project.Road.Blender,
		Dir:     cfg.Project.Generator.Workdir,
	}, nil
}

// singleRoadCommand builds the host invocation for `roadgen road`. The scene
// comes from the user's shell, so it is made absolute before the host runs
// in the generator workdir.
func singleRoadCommand(cfg *config.Config, script, scene string) (runner.Command, error) {
	abs, err := filepath.Abs(scene)
	if err != nil {
		return runner.Command{}, fmt.Errorf("resolve scene %s: %w", scene, err)
	}
	launcher, err := newLauncher(cfg)
	if err != nil {
		return runner.Command{}, err
	}
	return launcher.Command(script, abs)
}

// installRoadScript renders the host script into .roadgen/scripts.
func installRoadScript(cfg *config.Config) (string, error) {
	path, err := road.Install(cfg.ScriptsDir(), road.ParamsFromConfig(cfg.Project.Road))
	if err != nil {
		return "", fmt.Errorf("install road script: %w", err)
	}
	return path, nil
}
