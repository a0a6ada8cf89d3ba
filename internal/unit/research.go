package unit

import (
	"context"
	"fmt"

	"github.com/dusk-indust/issueforge/internal/template"
)

// Context keys written by FeatureResearch.
const (
	KeyFeatureResearchResult = "feature_research_result"
	KeyFeatureResearchError  = "feature_research_error"
)

// FeatureResearch expands a feature request into an implementation research
// document. The prompt template receives the request plus every value
// already in the context store, so it builds on the project analysis when
// that unit ran first.
type FeatureResearch struct {
	deps         Deps
	templateName string
}

var _ Unit = (*FeatureResearch)(nil)

// NewFeatureResearch builds the unit. The template_path unit setting
// overrides the default template name.
func NewFeatureResearch(deps Deps) Unit {
	name := deps.Config.GetString("template_path", "feature_research_template")
	return &FeatureResearch{deps: deps, templateName: name}
}

// Execute populates the research template and runs it through the LLM. A
// failed LLM call degrades to storing the populated template itself so
// downstream units still see the gathered context.
func (u *FeatureResearch) Execute(ctx context.Context, task string) (string, error) {
	content, err := u.deps.Templates.Load(u.templateName)
	if err != nil {
		u.store(KeyFeatureResearchError, fmt.Sprintf("feature research failed: %v", err))
		return "", fmt.Errorf("feature research: %w", err)
	}

	populated := template.Render(content, map[string]string{"feature_request": task})
	populated = template.ExpandContextLoop(populated, contextSections(u.deps.Store, "###"))

	if u.deps.LLM == nil {
		u.store(KeyFeatureResearchResult, populated)
		return "Feature research template populated (no LLM available for analysis).", nil
	}

	research, err := u.deps.invoke(ctx, populated)
	if err != nil {
		u.store(KeyFeatureResearchResult, populated)
		u.store(KeyFeatureResearchError, fmt.Sprintf("LLM research failed: %v", err))
		return fmt.Sprintf("Feature research template populated, but LLM analysis failed: %v", err), nil
	}

	u.store(KeyFeatureResearchResult, research)
	return "Feature research completed successfully.\n\n" + research, nil
}

func (u *FeatureResearch) store(key string, value any) {
	if u.deps.Store != nil {
		u.deps.Store.Set(key, value)
	}
}
