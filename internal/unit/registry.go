package unit

import "sort"

// Factory constructs a unit from its dependencies.
type Factory func(deps Deps) Unit

// Registry maps manifest class names to unit constructors. It replaces
// runtime code loading: a manifest can only reference units compiled into
// the binary (or registered by an embedding program).
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds className to factory, replacing any previous binding.
func (r *Registry) Register(className string, factory Factory) {
	r.factories[className] = factory
}

// Resolve looks up the factory for className.
func (r *Registry) Resolve(className string) (Factory, bool) {
	factory, ok := r.factories[className]
	return factory, ok
}

// ClassNames returns the registered class names, sorted.
func (r *Registry) ClassNames() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns a registry with the units shipped in this package.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register("ProjectAnalysisUnit", NewProjectAnalysis)
	r.Register("FeatureResearchUnit", NewFeatureResearch)
	r.Register("PromptAssemblyUnit", NewPromptAssembly)
	r.Register("IssueGeneratorUnit", NewIssueGenerator)
	return r
}
