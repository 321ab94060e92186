package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kingrea/roadgen/internal/assets"
	"github.com/kingrea/roadgen/internal/config"
)

func loadTestConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	for _, key := range []string{config.EnvPython, config.EnvBlender, config.EnvGeneratorDir, config.EnvRoadBlend} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	if err := config.InitProjectDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	if yaml != "" {
		if err := os.WriteFile(filepath.Join(dir, config.ProjectDirName, "config.yaml"), []byte(yaml), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

func TestWiringFollowsConfig(t *testing.T) {
	cfg := loadTestConfig(t, `
generator:
  python: conda run -n infinigen python
  workdir: gen
road:
  launcher: blender
  blender: /opt/blender/blender
`)
	gen, err := newGenerator(cfg)
	if err != nil {
		t.Fatalf("newGenerator: %v", err)
	}
	if !reflect.DeepEqual(gen.Python, []string{"conda", "run", "-n", "infinigen", "python"}) {
		t.Fatalf("python launcher = %v", gen.Python)
	}
	wantWorkdir := filepath.Join(cfg.ProjectDir, "gen")
	if gen.Workdir != wantWorkdir {
		t.Fatalf("workdir = %s, want %s", gen.Workdir, wantWorkdir)
	}

	launcher, err := newLauncher(cfg)
	if err != nil {
		t.Fatalf("newLauncher: %v", err)
	}
	cmd, err := launcher.Command("/tmp/apply_road.py", "scene.blend")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if cmd.Name != "/opt/blender/blender" || cmd.Dir != wantWorkdir {
		t.Fatalf("unexpected road command %+v", cmd)
	}

	layout := newLayout(cfg)
	if got := layout.CoarseDir("07"); got != filepath.Join("outputs/Terrains", "plain_coarse_07") {
		t.Fatalf("coarse dir = %s", got)
	}
}

func TestInstallRoadScriptWritesIntoStateDir(t *testing.T) {
	cfg := loadTestConfig(t, "")
	path, err := installRoadScript(cfg)
	if err != nil {
		t.Fatalf("installRoadScript: %v", err)
	}
	if filepath.Dir(path) != cfg.ScriptsDir() {
		t.Fatalf("script written to %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !strings.Contains(string(data), "RoadFlatten") {
		t.Fatalf("script missing modifier name")
	}
}

func TestRenderCatalogListsEveryEntry(t *testing.T) {
	out := renderCatalog(assets.DefaultCatalog())
	for _, e := range assets.DefaultCatalog() {
		if !strings.Contains(out, e.Name) || !strings.Contains(out, e.Factory) {
			t.Fatalf("catalog output missing %s:\n%s", e.Name, out)
		}
	}
}

func TestSingleRoadCommandResolvesSceneFromShell(t *testing.T) {
	cfg := loadTestConfig(t, "generator:\n  workdir: gen\n")
	cmd, err := singleRoadCommand(cfg, "/abs/apply_road.py", filepath.Join("outputs", "x", "scene.blend"))
	if err != nil {
		t.Fatalf("singleRoadCommand: %v", err)
	}
	if cmd.Dir != filepath.Join(cfg.ProjectDir, "gen") {
		t.Fatalf("dir = %s", cmd.Dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	scene := cmd.Args[len(cmd.Args)-1]
	if !filepath.IsAbs(scene) || scene != filepath.Join(cwd, "outputs", "x", "scene.blend") {
		t.Fatalf("scene should resolve against the shell cwd, got %s", scene)
	}
	if cmd.Args[len(cmd.Args)-2] != "--" {
		t.Fatalf("scene must follow --: %v", cmd.Args)
	}
}

func TestBatchSeedFlags(t *testing.T) {
	cases := []struct {
		args []string
		want bool
	}{
		{[]string{"--num_runs", "1"}, false},
		{[]string{"--num_runs", "1", "--seed"}, true},
		{[]string{"--num_runs", "1", "--s", "1"}, true},
		{[]string{"--num_runs", "1", "--s", "0"}, false},
		{[]string{"--num_runs", "1", "--s=7"}, true},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			batchOpts.seed, batchOpts.seedInt = false, 0
			t.Cleanup(func() { batchOpts.seed, batchOpts.seedInt = false, 0 })
			if err := batchCmd.ParseFlags(tc.args); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if err := batchCmd.ValidateArgs(batchCmd.Flags().Args()); err != nil {
				t.Fatalf("args rejected: %v", err)
			}
			if got := seedEnabled(); got != tc.want {
				t.Fatalf("seed enabled = %v, want %v", got, tc.want)
			}
		})
	}
}
