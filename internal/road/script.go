// Package road renders the host-side script that injects the road asset into
// a generated scene, and builds the command that runs it inside the host.
package road

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/kingrea/roadgen/internal/config"
	"github.com/kingrea/roadgen/internal/runner"
)

// ScriptName is the file Install writes.
const ScriptName = "apply_road.py"

//go:embed apply_road.py.tmpl
var scriptSource string

var scriptTemplate = template.Must(template.New(ScriptName).Funcs(template.FuncMap{
	"py":     strconv.Quote,
	"pylist": pyList,
	"num":    pyFloat,
	"vec":    pyVec,
}).Parse(scriptSource))

// Params are the values baked into the rendered script.
type Params struct {
	RoadBlend       string
	TextureBase     string
	TerrainPatterns []string
	ObjectFilter    string
	SmoothingGroup  string
	ModifierName    string
	BlurIterations  int
	ZOffset         float64
	Location        [3]float64
	Center          [3]float64
	Width           float64
	Length          float64
	Falloff         float64
	Strength        float64
}

// ParamsFromConfig copies the road section of the project config.
func ParamsFromConfig(rc config.RoadConfig) Params {
	return Params{
		RoadBlend:       rc.Blend,
		TextureBase:     rc.TextureBase,
		TerrainPatterns: append([]string(nil), rc.TerrainPatterns...),
		ObjectFilter:    rc.ObjectFilter,
		SmoothingGroup:  rc.SmoothingGroup,
		ModifierName:    rc.ModifierName,
		BlurIterations:  rc.BlurIterations,
		ZOffset:         rc.ZOffset,
		Location:        rc.Location,
		Center:          rc.Center,
		Width:           rc.Width,
		Length:          rc.Length,
		Falloff:         rc.Falloff,
		Strength:        rc.Strength,
	}
}

// Validate ensures the script would not fail on obviously bad input.
func (p Params) Validate() error {
	if strings.TrimSpace(p.RoadBlend) == "" {
		return fmt.Errorf("road: road library path is required")
	}
	if len(p.TerrainPatterns) == 0 {
		return fmt.Errorf("road: at least one terrain pattern is required")
	}
	for _, pattern := range p.TerrainPatterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("road: terrain patterns must not be empty")
		}
	}
	if p.ObjectFilter == "" || p.SmoothingGroup == "" || p.ModifierName == "" {
		return fmt.Errorf("road: object filter, smoothing group and modifier name are required")
	}
	if p.BlurIterations < 0 {
		return fmt.Errorf("road: blur iterations must be >= 0")
	}
	if name, ok := p.nonFinite(); ok {
		return fmt.Errorf("road: %s must be a finite number", name)
	}
	if p.Width <= 0 || p.Length <= 0 {
		return fmt.Errorf("road: width and length must be > 0")
	}
	if p.Falloff < 0 {
		return fmt.Errorf("road: falloff must be >= 0")
	}
	if p.Strength < 0 || p.Strength > 1 {
		return fmt.Errorf("road: strength must be within [0, 1]")
	}
	return nil
}

// Render produces the script source for p.
func Render(p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("road: render script: %w", err)
	}
	return buf.Bytes(), nil
}

// Install renders the script into dir and returns its path.
func Install(dir string, p Params) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("road: script directory is empty")
	}
	data, err := Render(p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("road: prepare %s: %w", dir, err)
	}
	path := filepath.Join(dir, ScriptName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("road: write %s: %w", path, err)
	}
	return path, nil
}

// Launcher builds the host invocation for a rendered script.
type Launcher struct {
	// Mode is config.LauncherPython or config.LauncherBlender.
	Mode    string
	Python  []string
	Blender string
	Dir     string
}

// Command runs script against scene. The scene path always follows "--" so
// the host ignores it and the script can read it from sys.argv.
func (l Launcher) Command(script, scene string) (runner.Command, error) {
	switch l.Mode {
	case config.LauncherBlender:
		if l.Blender == "" {
			return runner.Command{}, fmt.Errorf("road: blender executable is required")
		}
		return runner.Command{
			Name: l.Blender,
			Args: []string{"--background", "--python", script, "--", scene},
			Dir:  l.Dir,
		}, nil
	case config.LauncherPython, "":
		if len(l.Python) == 0 {
			return runner.Command{}, fmt.Errorf("road: python launcher is required")
		}
		args := append([]string{}, l.Python[1:]...)
		args = append(args, script, "--", scene)
		return runner.Command{Name: l.Python[0], Args: args, Dir: l.Dir}, nil
	default:
		return runner.Command{}, fmt.Errorf("road: unknown launcher mode %q", l.Mode)
	}
}

// nonFinite names the first float field holding NaN or an infinity, which
// would not render as a Python literal.
func (p Params) nonFinite() (string, bool) {
	fields := []struct {
		name   string
		values []float64
	}{
		{"z offset", []float64{p.ZOffset}},
		{"location", p.Location[:]},
		{"center", p.Center[:]},
		{"width", []float64{p.Width}},
		{"length", []float64{p.Length}},
		{"falloff", []float64{p.Falloff}},
		{"strength", []float64{p.Strength}},
	}
	for _, f := range fields {
		for _, v := range f.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return f.name, true
			}
		}
	}
	return "", false
}

func pyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func pyVec(v [3]float64) string {
	return fmt.Sprintf("(%s, %s, %s)", pyFloat(v[0]), pyFloat(v[1]), pyFloat(v[2]))
}

func pyList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
