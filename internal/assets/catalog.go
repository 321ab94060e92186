// Package assets generates individual props, one folder per catalog entry,
// for use alongside the road scenes.
package assets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/roadgen/internal/config"
)

// Size classes group the output folders.
const (
	SizeLarge  = "Large"
	SizeMedium = "Medium"
	SizeSmall  = "Small"
)

// Entry is one asset category and the generator factory that produces it.
type Entry struct {
	Name    string
	Size    string
	Factory string
}

// Catalog is an ordered list of entries.
type Catalog []Entry

// DefaultCatalog returns the built-in categories in generation order.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "bush", Size: SizeLarge, Factory: "BushFactory"},
		{Name: "boulder", Size: SizeLarge, Factory: "BoulderFactory"},

		{Name: "ground_leaves", Size: SizeMedium, Factory: "LeafFactory"},
		{Name: "rocks", Size: SizeMedium, Factory: "BlenderRockFactory"},

		{Name: "grass", Size: SizeSmall, Factory: "GrassTuftFactory"},
		{Name: "ferns", Size: SizeSmall, Factory: "FernFactory"},
		{Name: "monocots", Size: SizeSmall, Factory: "MonocotFactory"},
		{Name: "flowers", Size: SizeSmall, Factory: "FlowerPlantFactory"},
		{Name: "pinecone", Size: SizeSmall, Factory: "PineconeFactory"},
		{Name: "pine_needle", Size: SizeSmall, Factory: "PineNeedleFactory"},
	}
}

// CatalogFromConfig returns the configured catalog, or the default when the
// config does not override it.
func CatalogFromConfig(ac config.AssetsConfig) Catalog {
	if len(ac.Catalog) == 0 {
		return DefaultCatalog()
	}
	out := make(Catalog, len(ac.Catalog))
	for i, e := range ac.Catalog {
		out[i] = Entry{Name: e.Name, Size: e.Size, Factory: e.Factory}
	}
	return out
}

// Validate checks names are unique and every entry is complete.
func (c Catalog) Validate() error {
	seen := map[string]struct{}{}
	for i, e := range c {
		if e.Name == "" {
			return fmt.Errorf("assets: entry %d: name is required", i)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("assets: duplicate entry %s", e.Name)
		}
		seen[e.Name] = struct{}{}
		switch e.Size {
		case SizeLarge, SizeMedium, SizeSmall:
		default:
			return fmt.Errorf("assets: %s: size must be %s, %s or %s", e.Name, SizeLarge, SizeMedium, SizeSmall)
		}
		if e.Factory == "" {
			return fmt.Errorf("assets: %s: factory is required", e.Name)
		}
	}
	return nil
}

// Filter keeps the named entries in catalog order. A filter with no
// non-blank names keeps everything; unknown names are an error.
func (c Catalog) Filter(names []string) (Catalog, error) {
	want := map[string]bool{}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = false
		}
	}
	if len(want) == 0 {
		return append(Catalog(nil), c...), nil
	}
	var out Catalog
	for _, e := range c {
		if _, ok := want[e.Name]; ok {
			out = append(out, e)
			want[e.Name] = true
		}
	}
	var missing []string
	for name, found := range want {
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("assets: unknown entries: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
