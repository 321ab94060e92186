// Package generator builds the command lines used to drive the external scene
// generator, its export tool and its individual-asset entry point.
package generator

import (
	"strconv"

	"github.com/kingrea/roadgen/internal/runner"
)

// Generator task names understood by the generator's --task flag.
const (
	TaskCoarse      = "coarse"
	TaskPopulate    = "populate"
	TaskFineTerrain = "fine_terrain"
)

// Seed selects the --seed flag. Disabled seeds let the generator pick its own.
type Seed struct {
	Value   int
	Enabled bool
}

// SeedFor ties the seed to the scene index when enabled.
func SeedFor(index int, enabled bool) Seed {
	return Seed{Value: index, Enabled: enabled}
}

// ExportOptions configures the export tool.
type ExportOptions struct {
	Module     string
	Format     string
	Resolution int
	Omniverse  bool
}

// AssetOptions configures the individual asset entry point.
type AssetOptions struct {
	Module string
	Format string
}

// Generator knows how to invoke the generator package through Python.
type Generator struct {
	// Python is the interpreter launcher, e.g. ["python"] or
	// ["conda", "run", "-n", "infinigen", "python"].
	Python []string
	// Workdir is the generator checkout; commands run from there.
	Workdir     string
	Module      string
	Configs     []string
	FineConfigs []string
	Export      ExportOptions
	Assets      AssetOptions
}

// TaskRequest describes one generate-nature invocation.
type TaskRequest struct {
	Task         string
	Seed         Seed
	ExtraConfigs []string
	Input        string
	Output       string
}

// Task builds `python -m <module> --task <task> [--seed N] -g <configs...>
// [--input_folder in] --output_folder out`.
func (g Generator) Task(req TaskRequest) runner.Command {
	args := []string{"-m", g.Module, "--task", req.Task}
	if req.Seed.Enabled {
		args = append(args, "--seed", strconv.Itoa(req.Seed.Value))
	}
	args = append(args, "-g")
	args = append(args, g.Configs...)
	args = append(args, req.ExtraConfigs...)
	if req.Input != "" {
		args = append(args, "--input_folder", req.Input)
	}
	args = append(args, "--output_folder", req.Output)
	return g.python(args...)
}

// Coarse generates the coarse terrain for a scene.
func (g Generator) Coarse(layout Layout, label string, seed Seed) runner.Command {
	return g.Task(TaskRequest{
		Task:   TaskCoarse,
		Seed:   seed,
		Output: layout.CoarseDir(label),
	})
}

// Populate places assets on the coarse terrain.
func (g Generator) Populate(layout Layout, label string, seed Seed) runner.Command {
	return g.Task(TaskRequest{
		Task:   TaskPopulate,
		Seed:   seed,
		Input:  layout.CoarseDir(label),
		Output: layout.PopulateDir(label),
	})
}

// Fine meshes the populated scene at full resolution.
func (g Generator) Fine(layout Layout, label string, seed Seed) runner.Command {
	return g.Task(TaskRequest{
		Task:         TaskFineTerrain,
		Seed:         seed,
		ExtraConfigs: g.FineConfigs,
		Input:        layout.PopulateDir(label),
		Output:       layout.FineDir(label),
	})
}

// ExportScene converts a scene folder for the destination platform.
func (g Generator) ExportScene(input, output string) runner.Command {
	args := []string{
		"-m", g.Export.Module,
		"--input_folder", input,
		"--output_folder", output,
		"-f", g.Export.Format,
		"-r", strconv.Itoa(g.Export.Resolution),
	}
	if g.Export.Omniverse {
		args = append(args, "--omniverse")
	}
	return g.python(args...)
}

// IndividualAsset generates n instances of a single factory without rendering.
func (g Generator) IndividualAsset(outputDir, factory string, n int) runner.Command {
	return g.python(
		"-m", g.Assets.Module,
		"--output_folder", outputDir,
		"-f", factory,
		"-n", strconv.Itoa(n),
		"--render", "none",
		"--export", g.Assets.Format,
	)
}

func (g Generator) python(args ...string) runner.Command {
	launcher := g.Python
	if len(launcher) == 0 {
		launcher = []string{"python"}
	}
	full := make([]string, 0, len(launcher)-1+len(args))
	full = append(full, launcher[1:]...)
	full = append(full, args...)
	return runner.Command{Name: launcher[0], Args: full, Dir: g.Workdir}
}
