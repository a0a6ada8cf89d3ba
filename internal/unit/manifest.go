package unit

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestFile is the filename a unit directory must contain to be
// discovered.
const ManifestFile = "manifest.json"

// Manifest describes a unit directory. Name is the identifier used in
// execution_order; ClassName selects the registered constructor. EntryPoint
// is carried for compatibility with older unit layouts and is informational
// only.
type Manifest struct {
	Name       string `json:"name"`
	EntryPoint string `json:"entry_point"`
	ClassName  string `json:"class_name"`
}

// ReadManifest parses and validates the manifest at path.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("unit: read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("unit: parse manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return Manifest{}, fmt.Errorf("unit: manifest %s: missing required field %q", path, "name")
	}
	if m.ClassName == "" {
		return Manifest{}, fmt.Errorf("unit: manifest %s: missing required field %q", path, "class_name")
	}
	return m, nil
}
