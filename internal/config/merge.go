package config

// deepMerge merges override onto base and returns a new tree. Neither input
// is mutated.
//
// The rules mirror what every consumer of per-unit overrides expects:
//   - a key mapping to a JSON object in BOTH trees is merged recursively;
//   - any other key present in override replaces the base value wholesale,
//     including sequences (no element-wise merging);
//   - keys only in base are carried over unchanged.
func deepMerge(base, override map[string]any) map[string]any {
	merged := deepCopyMap(base)
	for key, value := range override {
		overrideMap, overrideIsMap := value.(map[string]any)
		baseMap, baseIsMap := merged[key].(map[string]any)
		if overrideIsMap && baseIsMap {
			merged[key] = deepMerge(baseMap, overrideMap)
			continue
		}
		merged[key] = deepCopyValue(value)
	}
	return merged
}

// deepCopyMap returns an independent copy of a JSON-shaped mapping.
func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = deepCopyValue(value)
	}
	return out
}

// deepCopyValue copies JSON-shaped values: mappings and sequences are copied
// recursively, scalars are returned as-is.
func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopyMap(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = deepCopyValue(elem)
		}
		return out
	default:
		return v
	}
}
