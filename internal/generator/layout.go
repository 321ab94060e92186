package generator

import (
	"fmt"
	"path/filepath"
)

// SceneFileName is the scene the generator writes into every stage folder.
const SceneFileName = "scene.blend"

// SceneLabel renders a scene index the way stage folders are keyed ("07").
func SceneLabel(index int) string {
	return fmt.Sprintf("%02d", index)
}

// Layout names the per-stage output folders of one scene. Paths are relative
// to the generator working directory unless Root is absolute.
type Layout struct {
	Root   string
	Prefix string
}

func (l Layout) dir(kind, label string) string {
	return filepath.Join(l.Root, fmt.Sprintf("%s_%s_%s", l.Prefix, kind, label))
}

// CoarseDir holds the coarse terrain output.
func (l Layout) CoarseDir(label string) string { return l.dir("coarse", label) }

// PopulateDir holds the populated scene.
func (l Layout) PopulateDir(label string) string { return l.dir("pop", label) }

// FineDir holds the populated scene after fine terrain meshing.
func (l Layout) FineDir(label string) string { return l.dir("popfine", label) }

// ExportDir receives the exported USD scene.
func (l Layout) ExportDir(label string) string { return l.dir("usd", label) }

// SceneFile returns the scene file inside a stage folder.
func SceneFile(dir string) string {
	return filepath.Join(dir, SceneFileName)
}
