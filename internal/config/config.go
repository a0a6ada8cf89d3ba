// Package config is the single source of truth for static settings: a
// JSON-shaped tree with dotted-path lookup, deep-merge composition for
// per-unit overrides, and schema enforcement.
//
// A Store is an explicitly constructed value passed into the orchestrator
// and from there into every unit; there is no ambient global.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultUnitsDir is the conventional units directory used when the base
// configuration does not declare agents.directory.
const DefaultUnitsDir = "agents"

// ValidationMode selects whether a merge result is checked against the
// schema. Per-unit override files are partial documents, so call sites
// merging them pass SkipValidation explicitly instead of relying on ad hoc
// exemptions.
type ValidationMode int

const (
	// Validate runs the merged tree through the schema.
	Validate ValidationMode = iota
	// SkipValidation returns the merged tree unchecked.
	SkipValidation
)

// Store holds the loaded configuration tree. Loaded once per run at process
// start; mutable only through Set, which injects a small number of
// runtime-computed facts (e.g. the resolved project root).
type Store struct {
	tree   map[string]any
	schema *Schema
}

// New returns an empty Store with schema validation enabled.
func New() *Store {
	return &Store{tree: make(map[string]any), schema: NewSchema()}
}

// NewUnvalidated returns an empty Store with no schema attached. Used by
// tests and callers that assemble trees programmatically.
func NewUnvalidated() *Store {
	return &Store{tree: make(map[string]any)}
}

// Load reads the JSON document at path into the store.
//
// A missing file is not an error: the global configuration is optional and
// the store simply becomes empty. A file that exists but is not valid JSON
// is a terminal *MalformedError, and a document that fails schema
// validation is a terminal *ValidationError; both must abort startup.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.tree = make(map[string]any)
			return nil
		}
		return fmt.Errorf("read configuration %s: %w", path, err)
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return &MalformedError{Path: path, Err: err}
	}

	if s.schema != nil {
		if err := s.schema.Validate(tree); err != nil {
			return err
		}
	}

	s.tree = tree
	return nil
}

// Get splits path on "." and walks the nested tree. It returns def the
// first time a segment is missing or the current value is not a mapping;
// it never fails.
func (s *Store) Get(path string, def any) any {
	return lookup(s.tree, path, def)
}

// GetString is Get narrowed to string values; non-string matches fall back
// to def.
func (s *Store) GetString(path, def string) string {
	if v, ok := s.Get(path, def).(string); ok {
		return v
	}
	return def
}

// GetBool is Get narrowed to bool values.
func (s *Store) GetBool(path string, def bool) bool {
	if v, ok := s.Get(path, def).(bool); ok {
		return v
	}
	return def
}

// GetStringSlice returns the sequence at path as strings, or nil when the
// path does not resolve to a sequence. Non-string elements are skipped.
func (s *Store) GetStringSlice(path string) []string {
	seq, ok := s.Get(path, nil).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, elem := range seq {
		if str, isString := elem.(string); isString {
			out = append(out, str)
		}
	}
	return out
}

// Set walks path, creating intermediate mappings as needed, and assigns the
// leaf value. An existing non-mapping intermediate is replaced by a mapping.
func (s *Store) Set(path string, value any) {
	segments := strings.Split(path, ".")
	node := s.tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := node[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[segment] = next
		}
		node = next
	}
	node[segments[len(segments)-1]] = value
}

// Snapshot returns a deep, independent copy of the whole tree. Callers may
// mutate the result freely.
func (s *Store) Snapshot() map[string]any {
	return deepCopyMap(s.tree)
}

// MergedWith loads the JSON document at overridePath and deep-merges it
// onto a snapshot of the current tree, returning the new tree without
// mutating store state.
//
// A missing override file is a no-op merge: the snapshot is returned
// unchanged, unlike Load where a missing file empties the store. Malformed
// JSON is fatal either way. When mode is Validate the merged result must
// pass the schema.
func (s *Store) MergedWith(overridePath string, mode ValidationMode) (map[string]any, error) {
	base := s.Snapshot()

	data, err := os.ReadFile(overridePath)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, fmt.Errorf("read override configuration %s: %w", overridePath, err)
	}

	var override map[string]any
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, &MalformedError{Path: overridePath, Err: err}
	}

	merged := deepMerge(base, override)

	if mode == Validate && s.schema != nil {
		if err := s.schema.Validate(merged); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// UnitConfig computes the merged configuration for one unit:
// <units-directory>/<name>/config.json deep-merged onto the base tree.
// Per-unit overrides are partial documents, so validation is skipped.
func (s *Store) UnitConfig(name string) (map[string]any, error) {
	return s.MergedWith(filepath.Join(s.UnitsDir(), name, "config.json"), SkipValidation)
}

// UnitsDir returns the configured units directory.
func (s *Store) UnitsDir() string {
	return s.GetString("agents.directory", DefaultUnitsDir)
}

// ExecutionOrder returns the configured unit execution order, or an empty
// slice when none is declared.
func (s *Store) ExecutionOrder() []string {
	return s.GetStringSlice("execution_order")
}

// lookup resolves a dotted path inside a JSON-shaped tree.
func lookup(tree map[string]any, path string, def any) any {
	var current any = tree
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return def
		}
		current, ok = node[segment]
		if !ok {
			return def
		}
	}
	return current
}
