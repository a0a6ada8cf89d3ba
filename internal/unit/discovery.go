package unit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Set holds the discovered units keyed by manifest name, preserving the
// order they were found in.
type Set struct {
	units map[string]Unit
	order []string
}

// Get returns the unit registered under name.
func (s *Set) Get(name string) (Unit, bool) {
	u, ok := s.units[name]
	return u, ok
}

// Names returns the unit names in discovery order.
func (s *Set) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of discovered units.
func (s *Set) Len() int { return len(s.units) }

// Discover scans dir for unit directories. Each subdirectory containing a
// manifest.json whose class name resolves in reg becomes a unit, built with
// the Deps returned by deps for its directory name. Directories with
// malformed manifests or unknown class names are skipped with a warning;
// two manifests claiming the same unit name is an error because silently
// picking one would make execution_order ambiguous.
func Discover(dir string, reg *Registry, deps func(dirName string) Deps) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unit: read units directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	set := &Set{units: make(map[string]Unit)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(dir, entry.Name(), ManifestFile)
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}

		d := deps(entry.Name())
		manifest, err := ReadManifest(manifestPath)
		if err != nil {
			d.logger().Warn("skipping unit", "dir", entry.Name(), "error", err)
			continue
		}

		factory, ok := reg.Resolve(manifest.ClassName)
		if !ok {
			d.logger().Warn("skipping unit with unknown class",
				"dir", entry.Name(), "class", manifest.ClassName)
			continue
		}

		if _, exists := set.units[manifest.Name]; exists {
			return nil, fmt.Errorf("unit: duplicate unit name %q (second definition in %s)",
				manifest.Name, filepath.Join(dir, entry.Name()))
		}
		set.units[manifest.Name] = factory(d)
		set.order = append(set.order, manifest.Name)
	}
	return set, nil
}
