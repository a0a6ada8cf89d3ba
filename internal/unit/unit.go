// Package unit defines the processing units the orchestrator runs and the
// built-in units shipped with the binary. A unit receives the original task
// text, does its work, and communicates with downstream units through the
// shared context store rather than through its return value.
//
// Units are wired by name through a Registry: a unit directory's
// manifest.json names the Go constructor to use, so adding a unit means
// registering a factory, not loading code at runtime.
package unit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dusk-indust/issueforge/internal/config"
	"github.com/dusk-indust/issueforge/internal/contextstore"
	"github.com/dusk-indust/issueforge/internal/github"
	"github.com/dusk-indust/issueforge/internal/llm"
	"github.com/dusk-indust/issueforge/internal/template"
)

// Unit is a single step in the pipeline. Execute receives the original task
// description; chained state travels through the context store.
type Unit interface {
	Execute(ctx context.Context, task string) (string, error)
}

// Deps carries the shared services a unit may use. Every field except Config
// is optional: a unit without an LLM degrades to its non-LLM behavior, and a
// nil store simply means nothing is shared.
type Deps struct {
	Config    *config.View
	LLM       llm.Invoker
	Store     *contextstore.Store
	Templates *template.Loader
	Publisher *github.Publisher
	Logger    *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// invoke runs the prompt through the LLM with the unit's own settings tier
// applied.
func (d Deps) invoke(ctx context.Context, prompt string) (string, error) {
	return d.LLM.Invoke(ctx, prompt, llm.WithUnit(d.Config.UnitName()))
}

// readableKey turns a context key like project_analysis_summary into
// "Project Analysis Summary" for use as a section heading.
func readableKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// contextSections renders every non-empty context value as a markdown
// section at the given heading level, keys sorted for stable output.
func contextSections(store *contextstore.Store, heading string) string {
	if store == nil {
		return ""
	}
	items := store.Items()
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := stringify(items[key])
		if strings.TrimSpace(value) == "" {
			continue
		}
		b.WriteString("\n" + heading + " " + readableKey(key) + "\n" + value + "\n")
	}
	return b.String()
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
