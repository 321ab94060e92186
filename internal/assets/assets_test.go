package assets

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kingrea/roadgen/internal/config"
	"github.com/kingrea/roadgen/internal/generator"
	"github.com/kingrea/roadgen/internal/runner"
)

func names(c Catalog) []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Name
	}
	return out
}

func TestDefaultCatalogOrder(t *testing.T) {
	c := DefaultCatalog()
	if err := c.Validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
	want := []string{"bush", "boulder", "ground_leaves", "rocks", "grass", "ferns", "monocots", "flowers", "pinecone", "pine_needle"}
	if got := names(c); !reflect.DeepEqual(got, want) {
		t.Fatalf("catalog = %v", got)
	}
	if c[3].Factory != "BlenderRockFactory" || c[3].Size != SizeMedium {
		t.Fatalf("unexpected rocks entry %+v", c[3])
	}
}

func TestCatalogFromConfig(t *testing.T) {
	if got := CatalogFromConfig(config.AssetsConfig{}); len(got) != len(DefaultCatalog()) {
		t.Fatalf("empty override should yield default catalog")
	}
	custom := CatalogFromConfig(config.AssetsConfig{Catalog: []config.AssetEntry{{Name: "tree", Size: SizeLarge, Factory: "TreeFlowerFactory"}}})
	if len(custom) != 1 || custom[0].Factory != "TreeFlowerFactory" {
		t.Fatalf("override ignored: %+v", custom)
	}
}

func TestValidateRejectsBadEntries(t *testing.T) {
	cases := map[string]Catalog{
		"duplicate":  {{Name: "a", Size: SizeSmall, Factory: "F"}, {Name: "a", Size: SizeSmall, Factory: "F"}},
		"bad size":   {{Name: "a", Size: "Huge", Factory: "F"}},
		"no factory": {{Name: "a", Size: SizeSmall}},
		"no name":    {{Size: SizeSmall, Factory: "F"}},
	}
	for name, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestFilterKeepsCatalogOrder(t *testing.T) {
	got, err := DefaultCatalog().Filter([]string{"pinecone", "bush", " rocks "})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if !reflect.DeepEqual(names(got), []string{"bush", "rocks", "pinecone"}) {
		t.Fatalf("filtered = %v", names(got))
	}
	if _, err := DefaultCatalog().Filter([]string{"bush", "cactus"}); err == nil {
		t.Fatalf("expected error for unknown entry")
	}
	all, err := DefaultCatalog().Filter(nil)
	if err != nil || len(all) != len(DefaultCatalog()) {
		t.Fatalf("empty filter should keep everything")
	}
}

func TestFilterWithOnlyBlankNamesKeepsEverything(t *testing.T) {
	// --only " , " splits into blank names.
	got, err := DefaultCatalog().Filter([]string{" ", ""})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if !reflect.DeepEqual(names(got), names(DefaultCatalog())) {
		t.Fatalf("blank filter selected %v", names(got))
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	base := t.TempDir()
	var calls []runner.Command
	run := runner.Func(func(_ context.Context, cmd runner.Command) error {
		calls = append(calls, cmd)
		for i, arg := range cmd.Args {
			if arg == "-f" && cmd.Args[i+1] == "BoulderFactory" {
				return &runner.ExitError{Command: cmd.Name, Code: 2}
			}
		}
		return nil
	})
	gen := generator.Generator{
		Python: []string{"python"},
		Assets: generator.AssetOptions{Module: "infinigen_examples.generate_individual_assets", Format: "usdc"},
	}
	g := NewGenerator(gen, run, base, 1, nil)
	catalog := Catalog{
		{Name: "bush", Size: SizeLarge, Factory: "BushFactory"},
		{Name: "boulder", Size: SizeLarge, Factory: "BoulderFactory"},
		{Name: "grass", Size: SizeSmall, Factory: "GrassTuftFactory"},
	}
	report, err := g.Run(context.Background(), catalog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(report.Succeeded, []string{"bush", "grass"}) || !reflect.DeepEqual(report.Failed, []string{"boulder"}) {
		t.Fatalf("report = %+v", report)
	}
	if len(calls) != 3 {
		t.Fatalf("expected 3 invocations, got %d", len(calls))
	}
	for _, e := range catalog {
		if info, err := os.Stat(filepath.Join(base, e.Size, e.Name)); err != nil || !info.IsDir() {
			t.Fatalf("output folder for %s not created: %v", e.Name, err)
		}
	}
	want := []string{"-m", "infinigen_examples.generate_individual_assets", "--output_folder", filepath.Join(base, "Small", "grass"), "-f", "GrassTuftFactory", "-n", "1", "--render", "none", "--export", "usdc"}
	if !reflect.DeepEqual(calls[2].Args, want) {
		t.Fatalf("grass args = %v", calls[2].Args)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGenerator(generator.Generator{}, runner.Func(func(context.Context, runner.Command) error { return nil }), t.TempDir(), 1, nil)
	report, err := g.Run(ctx, DefaultCatalog())
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if len(report.Succeeded) != 0 {
		t.Fatalf("nothing should run after cancellation")
	}
}
