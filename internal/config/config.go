// internal/config/config.go
//
// This package handles configuration and the .roadgen directory structure.
// Every project that drives the generator through roadgen gets a .roadgen/
// folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".roadgen"

	configFileName = "config.yaml"
)

// Environment variables that take precedence over config.yaml.
const (
	EnvPython       = "ROADGEN_PYTHON"
	EnvBlender      = "ROADGEN_BLENDER"
	EnvGeneratorDir = "ROADGEN_GENERATOR_DIR"
	EnvRoadBlend    = "ROADGEN_ROAD_BLEND"
)

// Road launcher modes.
const (
	LauncherPython  = "python"
	LauncherBlender = "blender"
)

const defaultProjectConfigYAML = `# roadgen project configuration
version: 1

generator:
  # Interpreter used for every generator invocation. Shell-style quoting is
  # honoured, e.g. "conda run -n infinigen python".
  python: python
  # Working directory of the generator checkout; stage output paths are
  # relative to it.
  workdir: .
  module: infinigen_examples.generate_nature
  configs: [base_nature, simple, plain]
  # Extra config tags for fine_terrain only (e.g. cuda).
  fine_configs: []

layout:
  output_root: outputs/Terrains
  prefix: plain

export:
  module: infinigen.tools.export
  format: usdc
  resolution: 1024
  omniverse: true

road:
  # python runs the script with bpy installed as a module; blender runs it
  # through blender --background --python.
  launcher: python
  blender: blender
  blend: RoadWrap.blend
  texture_base: .
  terrain_patterns: [opaqueterrain_fine, opaqueterrain]

assets:
  module: infinigen_examples.generate_individual_assets
  output_dir: outputs/RoadAssets
  count: 1

logging:
  level: info
`

// GeneratorConfig describes how the external generator is invoked.
type GeneratorConfig struct {
	Python      string   `yaml:"python"`
	Workdir     string   `yaml:"workdir"`
	Module      string   `yaml:"module"`
	Configs     []string `yaml:"configs"`
	FineConfigs []string `yaml:"fine_configs,omitempty"`
}

// LayoutConfig names the per-stage output directories.
type LayoutConfig struct {
	OutputRoot string `yaml:"output_root"`
	Prefix     string `yaml:"prefix"`
}

// ExportConfig configures the export tool invocation.
type ExportConfig struct {
	Module     string `yaml:"module"`
	Format     string `yaml:"format"`
	Resolution int    `yaml:"resolution"`
	Omniverse  bool   `yaml:"omniverse"`
}

// RoadConfig carries everything the host-side road script needs.
type RoadConfig struct {
	Launcher        string     `yaml:"launcher"`
	Blender         string     `yaml:"blender,omitempty"`
	Blend           string     `yaml:"blend"`
	TextureBase     string     `yaml:"texture_base"`
	TerrainPatterns []string   `yaml:"terrain_patterns"`
	ObjectFilter    string     `yaml:"object_filter,omitempty"`
	SmoothingGroup  string     `yaml:"smoothing_group,omitempty"`
	ModifierName    string     `yaml:"modifier_name,omitempty"`
	BlurIterations  int        `yaml:"blur_iterations"`
	ZOffset         float64    `yaml:"z_offset"`
	Location        [3]float64 `yaml:"location,flow"`
	Center          [3]float64 `yaml:"center,flow"`
	Width           float64    `yaml:"width"`
	Length          float64    `yaml:"length"`
	Falloff         float64    `yaml:"falloff"`
	Strength        float64    `yaml:"strength"`
}

// AssetEntry is a catalog override entry.
type AssetEntry struct {
	Name    string `yaml:"name"`
	Size    string `yaml:"size"`
	Factory string `yaml:"factory"`
}

// AssetsConfig configures individual asset generation.
type AssetsConfig struct {
	Module    string       `yaml:"module"`
	OutputDir string       `yaml:"output_dir"`
	Count     int          `yaml:"count"`
	Format    string       `yaml:"format,omitempty"`
	Catalog   []AssetEntry `yaml:"catalog,omitempty"`
}

// LoggingConfig configures the zap logger and its rotating file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// ProjectConfig models .roadgen/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Generator GeneratorConfig `yaml:"generator"`
	Layout    LayoutConfig    `yaml:"layout"`
	Export    ExportConfig    `yaml:"export"`
	Road      RoadConfig      `yaml:"road"`
	Assets    AssetsConfig    `yaml:"assets"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Config holds the runtime configuration for roadgen.
type Config struct {
	// ProjectDir is the directory roadgen was pointed at (cwd by default)
	ProjectDir string

	// StateDir is ProjectDir/.roadgen
	StateDir string

	// Source is the config file that was loaded, empty when defaults are used
	Source string

	Project ProjectConfig
}

// InitProjectDir creates the .roadgen directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .roadgen/
// ├── config.yaml
// ├── logs/         <- roadgen.log and subprocess.log
// └── scripts/      <- rendered host scripts (apply_road.py)
func InitProjectDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, ProjectDirName)
	dirs := []string{
		filepath.Join(stateDir, "logs"),
		filepath.Join(stateDir, "scripts"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(stateDir, configFileName))
}

// Load builds a Config for projectDir. Priority: defaults < config file < .env
// and process environment. An explicit path must exist; the implicit
// .roadgen/config.yaml is optional.
func Load(projectDir, explicitPath string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateDir:   filepath.Join(abs, ProjectDirName),
		Project:    DefaultProjectConfig(),
	}
	path := strings.TrimSpace(explicitPath)
	optional := path == ""
	if optional {
		path = cfg.ProjectConfigPath()
	}
	if err := cfg.loadProjectConfig(path, optional); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Project.applyDefaults()
	if err := cfg.Project.normalize(cfg.ProjectDir); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// DefaultProjectConfig returns the built-in configuration.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Generator: GeneratorConfig{
			Python:  "python",
			Workdir: ".",
			Module:  "infinigen_examples.generate_nature",
			Configs: []string{"base_nature", "simple", "plain"},
		},
		Layout: LayoutConfig{
			OutputRoot: "outputs/Terrains",
			Prefix:     "plain",
		},
		Export: ExportConfig{
			Module:     "infinigen.tools.export",
			Format:     "usdc",
			Resolution: 1024,
			Omniverse:  true,
		},
		Road: RoadConfig{
			Launcher:        LauncherPython,
			Blender:         "blender",
			Blend:           "RoadWrap.blend",
			TextureBase:     ".",
			TerrainPatterns: []string{"opaqueterrain_fine", "opaqueterrain"},
			ObjectFilter:    "Road",
			SmoothingGroup:  "TerrainSmoothing",
			ModifierName:    "RoadFlatten",
			BlurIterations:  5,
			ZOffset:         -0.15,
			Location:        [3]float64{0, 0, 2},
			Center:          [3]float64{0, 21, 0},
			Width:           6.5,
			Length:          47.5 * 3,
			Falloff:         4.0,
			Strength:        0.8,
		},
		Assets: AssetsConfig{
			Module:    "infinigen_examples.generate_individual_assets",
			OutputDir: "outputs/RoadAssets",
			Count:     1,
			Format:    "usdc",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// ScriptsDir returns the directory rendered host scripts are written to
func (c *Config) ScriptsDir() string {
	return filepath.Join(c.StateDir, "scripts")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, configFileName)
}

// PythonCommand splits the configured interpreter launcher into argv form.
func (c *Config) PythonCommand() ([]string, error) {
	return splitLauncher(c.Project.Generator.Python)
}

func (c *Config) loadProjectConfig(path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	// Decoding on top of the defaults keeps keys the file leaves out.
	parsed := DefaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Project = parsed
	c.Source = path
	return nil
}

func (c *Config) applyEnv() error {
	envFile := filepath.Join(c.ProjectDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", envFile, err)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPython)); v != "" {
		c.Project.Generator.Python = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBlender)); v != "" {
		c.Project.Road.Blender = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGeneratorDir)); v != "" {
		c.Project.Generator.Workdir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRoadBlend)); v != "" {
		c.Project.Road.Blend = v
	}
	return nil
}

func (pc *ProjectConfig) applyDefaults() {
	def := DefaultProjectConfig()
	if pc.Version == 0 {
		pc.Version = 1
	}
	if len(pc.Generator.Configs) == 0 {
		pc.Generator.Configs = def.Generator.Configs
	}
	if len(pc.Road.TerrainPatterns) == 0 {
		pc.Road.TerrainPatterns = def.Road.TerrainPatterns
	}
	if pc.Road.ObjectFilter == "" {
		pc.Road.ObjectFilter = def.Road.ObjectFilter
	}
	if pc.Road.SmoothingGroup == "" {
		pc.Road.SmoothingGroup = def.Road.SmoothingGroup
	}
	if pc.Road.ModifierName == "" {
		pc.Road.ModifierName = def.Road.ModifierName
	}
	if pc.Assets.Count == 0 {
		pc.Assets.Count = def.Assets.Count
	}
	if pc.Assets.Format == "" {
		pc.Assets.Format = def.Assets.Format
	}
	if pc.Logging.Level == "" {
		pc.Logging.Level = def.Logging.Level
	}
}

func (pc *ProjectConfig) normalize(base string) error {
	pc.Generator.Python = strings.TrimSpace(pc.Generator.Python)
	pc.Generator.Module = strings.TrimSpace(pc.Generator.Module)
	pc.Generator.Configs = trimAll(pc.Generator.Configs)
	pc.Generator.FineConfigs = trimAll(pc.Generator.FineConfigs)
	workdir, err := resolvePath(base, pc.Generator.Workdir)
	if err != nil {
		return fmt.Errorf("generator.workdir: %w", err)
	}
	pc.Generator.Workdir = workdir

	pc.Layout.OutputRoot = filepath.Clean(strings.TrimSpace(pc.Layout.OutputRoot))
	pc.Layout.Prefix = strings.TrimSpace(pc.Layout.Prefix)

	pc.Export.Format = strings.ToLower(strings.TrimSpace(pc.Export.Format))

	pc.Road.Launcher = strings.ToLower(strings.TrimSpace(pc.Road.Launcher))
	pc.Road.Blender = strings.TrimSpace(pc.Road.Blender)
	if pc.Road.Blend, err = resolvePath(base, pc.Road.Blend); err != nil {
		return fmt.Errorf("road.blend: %w", err)
	}
	if pc.Road.TextureBase, err = resolvePath(base, pc.Road.TextureBase); err != nil {
		return fmt.Errorf("road.texture_base: %w", err)
	}
	patterns := trimAll(pc.Road.TerrainPatterns)
	for i := range patterns {
		patterns[i] = strings.ToLower(patterns[i])
	}
	pc.Road.TerrainPatterns = patterns

	// Assets are created by roadgen itself, so anchor them where the
	// generator subprocess will look for them.
	if pc.Assets.OutputDir, err = resolvePath(pc.Generator.Workdir, pc.Assets.OutputDir); err != nil {
		return fmt.Errorf("assets.output_dir: %w", err)
	}
	for i := range pc.Assets.Catalog {
		entry := &pc.Assets.Catalog[i]
		entry.Name = strings.TrimSpace(entry.Name)
		entry.Size = strings.TrimSpace(entry.Size)
		entry.Factory = strings.TrimSpace(entry.Factory)
	}
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	return nil
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if _, err := splitLauncher(pc.Generator.Python); err != nil {
		return fmt.Errorf("generator.python: %w", err)
	}
	if pc.Generator.Module == "" {
		return fmt.Errorf("generator.module is required")
	}
	if pc.Layout.Prefix == "" {
		return fmt.Errorf("layout.prefix is required")
	}
	if pc.Layout.OutputRoot == "" || pc.Layout.OutputRoot == "." {
		return fmt.Errorf("layout.output_root is required")
	}
	if strings.TrimSpace(pc.Export.Module) == "" {
		return fmt.Errorf("export.module is required")
	}
	if pc.Export.Format == "" {
		return fmt.Errorf("export.format is required")
	}
	if pc.Export.Resolution <= 0 {
		return fmt.Errorf("export.resolution must be > 0")
	}
	switch pc.Road.Launcher {
	case LauncherPython:
	case LauncherBlender:
		if pc.Road.Blender == "" {
			return fmt.Errorf("road.blender is required for the blender launcher")
		}
	default:
		return fmt.Errorf("road.launcher must be '%s' or '%s'", LauncherPython, LauncherBlender)
	}
	if pc.Road.Blend == "" {
		return fmt.Errorf("road.blend is required")
	}
	if strings.TrimSpace(pc.Assets.Module) == "" {
		return fmt.Errorf("assets.module is required")
	}
	if pc.Assets.Count < 0 {
		return fmt.Errorf("assets.count must be >= 0")
	}
	for i, entry := range pc.Assets.Catalog {
		if entry.Name == "" || entry.Size == "" || entry.Factory == "" {
			return fmt.Errorf("assets.catalog[%d]: name, size and factory are required", i)
		}
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

func splitLauncher(value string) ([]string, error) {
	argv, err := shellwords.Parse(value)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("launcher is empty")
	}
	return argv, nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(base, candidate string) (string, error) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(trimmed)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Clean(filepath.Join(base, expanded)), nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
