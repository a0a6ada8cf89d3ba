package config

// View is a per-unit window onto the configuration: the base tree
// deep-merged with the unit's own config.json override. The merge is
// computed lazily on first access and cached for the unit's lifetime.
type View struct {
	base   *Store
	unit   string
	merged map[string]any
	err    error
	loaded bool
}

// NewView wraps base with unit-specific configuration access for the named
// unit.
func NewView(base *Store, unit string) *View {
	return &View{base: base, unit: unit}
}

// UnitName returns the unit this view belongs to.
func (v *View) UnitName() string { return v.unit }

// ensure computes and caches the merged tree. A merge failure is cached
// too, so the first failure keeps being reported instead of flapping.
func (v *View) ensure() (map[string]any, error) {
	if !v.loaded {
		v.merged, v.err = v.base.UnitConfig(v.unit)
		v.loaded = true
	}
	return v.merged, v.err
}

// Get resolves a dotted path against the merged per-unit tree. If the merge
// itself failed, def is returned; required keys surface their own errors
// at the point of use.
func (v *View) Get(path string, def any) any {
	merged, err := v.ensure()
	if err != nil {
		return def
	}
	return lookup(merged, path, def)
}

// GetString is Get narrowed to string values.
func (v *View) GetString(path, def string) string {
	if s, ok := v.Get(path, def).(string); ok {
		return s
	}
	return def
}

// GetBool is Get narrowed to bool values.
func (v *View) GetBool(path string, def bool) bool {
	if b, ok := v.Get(path, def).(bool); ok {
		return b
	}
	return def
}

// GetStringSlice returns the sequence at path as strings.
func (v *View) GetStringSlice(path string) []string {
	seq, ok := v.Get(path, nil).([]any)
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

// Snapshot returns a deep copy of the merged per-unit tree, or the merge
// error if the override file was unreadable.
func (v *View) Snapshot() (map[string]any, error) {
	merged, err := v.ensure()
	if err != nil {
		return nil, err
	}
	return deepCopyMap(merged), nil
}

// Set delegates to the base store: runtime facts are global, not per-unit,
// and must be visible to every subsequently created view.
func (v *View) Set(path string, value any) {
	v.base.Set(path, value)
}
