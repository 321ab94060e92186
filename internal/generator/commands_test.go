package generator

import (
	"path/filepath"
	"reflect"
	"testing"
)

func testGenerator() Generator {
	return Generator{
		Python:  []string{"python"},
		Workdir: "/srv/infinigen",
		Module:  "infinigen_examples.generate_nature",
		Configs: []string{"base_nature", "simple", "plain"},
		Export: ExportOptions{
			Module:     "infinigen.tools.export",
			Format:     "usdc",
			Resolution: 1024,
			Omniverse:  true,
		},
		Assets: AssetOptions{
			Module: "infinigen_examples.generate_individual_assets",
			Format: "usdc",
		},
	}
}

var testLayout = Layout{Root: "outputs/Terrains", Prefix: "plain"}

func TestSceneLabel(t *testing.T) {
	cases := map[int]string{0: "00", 7: "07", 42: "42", 123: "123"}
	for index, want := range cases {
		if got := SceneLabel(index); got != want {
			t.Fatalf("SceneLabel(%d) = %s, want %s", index, got, want)
		}
	}
}

func TestLayoutDirs(t *testing.T) {
	if got := testLayout.CoarseDir("03"); got != filepath.Join("outputs/Terrains", "plain_coarse_03") {
		t.Fatalf("CoarseDir = %s", got)
	}
	if got := testLayout.PopulateDir("03"); got != filepath.Join("outputs/Terrains", "plain_pop_03") {
		t.Fatalf("PopulateDir = %s", got)
	}
	if got := testLayout.FineDir("03"); got != filepath.Join("outputs/Terrains", "plain_popfine_03") {
		t.Fatalf("FineDir = %s", got)
	}
	if got := testLayout.ExportDir("03"); got != filepath.Join("outputs/Terrains", "plain_usd_03") {
		t.Fatalf("ExportDir = %s", got)
	}
	if got := SceneFile("x"); got != filepath.Join("x", "scene.blend") {
		t.Fatalf("SceneFile = %s", got)
	}
}

func TestStageCommandsWithAndWithoutSeed(t *testing.T) {
	g := testGenerator()
	coarse := filepath.Join("outputs/Terrains", "plain_coarse_05")
	pop := filepath.Join("outputs/Terrains", "plain_pop_05")
	fine := filepath.Join("outputs/Terrains", "plain_popfine_05")
	configs := []string{"-g", "base_nature", "simple", "plain"}
	cases := []struct {
		name string
		args []string
		want []string
	}{
		{
			"coarse seeded",
			g.Coarse(testLayout, "05", SeedFor(5, true)).Args,
			concat([]string{"-m", g.Module, "--task", "coarse", "--seed", "5"}, configs, []string{"--output_folder", coarse}),
		},
		{
			"coarse unseeded",
			g.Coarse(testLayout, "05", SeedFor(5, false)).Args,
			concat([]string{"-m", g.Module, "--task", "coarse"}, configs, []string{"--output_folder", coarse}),
		},
		{
			"populate seeded",
			g.Populate(testLayout, "05", SeedFor(5, true)).Args,
			concat([]string{"-m", g.Module, "--task", "populate", "--seed", "5"}, configs, []string{"--input_folder", coarse, "--output_folder", pop}),
		},
		{
			"populate unseeded",
			g.Populate(testLayout, "05", Seed{}).Args,
			concat([]string{"-m", g.Module, "--task", "populate"}, configs, []string{"--input_folder", coarse, "--output_folder", pop}),
		},
		{
			"fine seeded",
			g.Fine(testLayout, "05", SeedFor(5, true)).Args,
			concat([]string{"-m", g.Module, "--task", "fine_terrain", "--seed", "5"}, configs, []string{"--input_folder", pop, "--output_folder", fine}),
		},
		{
			"fine unseeded",
			g.Fine(testLayout, "05", Seed{}).Args,
			concat([]string{"-m", g.Module, "--task", "fine_terrain"}, configs, []string{"--input_folder", pop, "--output_folder", fine}),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !reflect.DeepEqual(tc.args, tc.want) {
				t.Fatalf("args = %v\nwant   %v", tc.args, tc.want)
			}
		})
	}
}

func TestSeedZeroIsEmitted(t *testing.T) {
	cmd := testGenerator().Coarse(testLayout, "00", SeedFor(0, true))
	if !contains(cmd.Args, "--seed") || cmd.Args[5] != "0" {
		t.Fatalf("seed 0 should still be passed: %v", cmd.Args)
	}
}

func TestFineConfigsAppendAfterBaseConfigs(t *testing.T) {
	g := testGenerator()
	g.FineConfigs = []string{"cuda"}
	args := g.Fine(testLayout, "01", Seed{}).Args
	want := []string{"-g", "base_nature", "simple", "plain", "cuda", "--input_folder"}
	for i, arg := range want {
		if args[4+i] != arg {
			t.Fatalf("args = %v, want %v at offset 4", args, want)
		}
	}
	if contains(g.Coarse(testLayout, "01", Seed{}).Args, "cuda") {
		t.Fatalf("fine configs leaked into coarse")
	}
}

func TestExportScene(t *testing.T) {
	g := testGenerator()
	cmd := g.ExportScene("in", "out")
	want := []string{"-m", "infinigen.tools.export", "--input_folder", "in", "--output_folder", "out", "-f", "usdc", "-r", "1024", "--omniverse"}
	if cmd.Name != "python" || !reflect.DeepEqual(cmd.Args, want) {
		t.Fatalf("export = %v", cmd.Argv())
	}
	g.Export.Omniverse = false
	if contains(g.ExportScene("in", "out").Args, "--omniverse") {
		t.Fatalf("omniverse flag should be omitted when disabled")
	}
}

func TestIndividualAsset(t *testing.T) {
	cmd := testGenerator().IndividualAsset("assets/Large/bush", "BushFactory", 1)
	want := []string{"-m", "infinigen_examples.generate_individual_assets", "--output_folder", "assets/Large/bush", "-f", "BushFactory", "-n", "1", "--render", "none", "--export", "usdc"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Fatalf("asset args = %v", cmd.Args)
	}
}

func TestLauncherPrefixAndWorkdir(t *testing.T) {
	g := testGenerator()
	g.Python = []string{"conda", "run", "-n", "infinigen", "python"}
	cmd := g.Coarse(testLayout, "02", Seed{})
	if cmd.Name != "conda" {
		t.Fatalf("name = %s, want conda", cmd.Name)
	}
	if !reflect.DeepEqual(cmd.Args[:6], []string{"run", "-n", "infinigen", "python", "-m", g.Module}) {
		t.Fatalf("launcher prefix not preserved: %v", cmd.Args)
	}
	if cmd.Dir != "/srv/infinigen" {
		t.Fatalf("dir = %s", cmd.Dir)
	}
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
