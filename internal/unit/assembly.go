package unit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Context keys written by PromptAssembly.
const (
	KeyAssembledPrompt     = "assembled_prompt"
	KeyOutputFilePath      = "output_file_path"
	KeyPromptAssemblyError = "prompt_assembly_error"
)

// OutputDirName is where generated specifications are written, relative to
// the project root.
const OutputDirName = "generated-issues"

// PromptAssembly synthesizes everything gathered so far into a final
// development specification and writes it to a sequentially numbered file
// under generated-issues/. Even a failed LLM call produces a file, so a run
// always leaves an artifact on disk.
type PromptAssembly struct {
	deps      Deps
	outputDir string
}

var _ Unit = (*PromptAssembly)(nil)

// NewPromptAssembly builds the unit. Output goes under project.root when
// configured, the working directory otherwise.
func NewPromptAssembly(deps Deps) Unit {
	root := deps.Config.GetString("project.root", "")
	if root == "" {
		root, _ = os.Getwd()
	}
	return &PromptAssembly{deps: deps, outputDir: filepath.Join(root, OutputDirName)}
}

// Execute assembles the final specification and returns the path of the
// written file.
func (u *PromptAssembly) Execute(ctx context.Context, task string) (string, error) {
	templateContent, err := u.deps.Templates.Load("example_template")
	if err != nil {
		u.store(KeyPromptAssemblyError, fmt.Sprintf("prompt assembly failed: %v", err))
		return "", fmt.Errorf("prompt assembly: %w", err)
	}

	contextSection := contextSections(u.deps.Store, "##")
	prompt := fmt.Sprintf(`Task: %s

Available Context:
%s

Template Instructions:
%s

Based on the task description and all the available context above, generate
a comprehensive final output that synthesizes all the information and
provides actionable guidance.`, task, contextSection, templateContent)

	if u.deps.LLM == nil {
		body := fmt.Sprintf("# Task: %s\n\n## Notice\nNo LLM available for detailed analysis.\n\n## Context Summary\n%s", task, contextSection)
		return u.writeResult(body, slugOrUntitled(task, 50)+"-basic", "")
	}

	raw, err := u.deps.invoke(ctx, prompt)
	if err != nil {
		errMsg := fmt.Sprintf("LLM assembly failed: %v", err)
		body := fmt.Sprintf("# Task: %s\n\n## Error\n%s\n\n## Context Summary\n%s", task, errMsg, contextSection)
		return u.writeResult(body, slugOrUntitled(task, 50)+"-error", errMsg)
	}

	final := cleanLLMOutput(raw)
	title := extractHeadingTitle(final)
	if title == "" {
		title = task
	}
	return u.writeResult(final, slugOrUntitled(title, 50), "")
}

// writeResult stores the assembled content, writes the numbered file, and
// returns its path. errMsg, when non-empty, is recorded in the context
// store alongside the degraded result.
func (u *PromptAssembly) writeResult(content, slug, errMsg string) (string, error) {
	if err := os.MkdirAll(u.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("prompt assembly: create output directory: %w", err)
	}

	filename := fmt.Sprintf("%03d-%s.md", nextSequenceNumber(u.outputDir), slug)
	outputFile := filepath.Join(u.outputDir, filename)
	if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("prompt assembly: write %s: %w", outputFile, err)
	}
	u.deps.logger().Info("development specification saved", "path", outputFile)

	u.store(KeyAssembledPrompt, content)
	u.store(KeyOutputFilePath, outputFile)
	if errMsg != "" {
		u.store(KeyPromptAssemblyError, errMsg)
	}
	return outputFile, nil
}

func (u *PromptAssembly) store(key string, value any) {
	if u.deps.Store != nil {
		u.deps.Store.Set(key, value)
	}
}

func slugOrUntitled(text string, max int) string {
	if slug := slugify(text, max); slug != "" {
		return slug
	}
	return "untitled-feature"
}
