package unit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/issueforge/internal/template"
	"github.com/dusk-indust/issueforge/internal/treescan"
)

// Context keys written by ProjectAnalysis.
const (
	KeyProjectAnalysisSummary = "project_analysis_summary"
	KeyProjectStructure       = "project_structure"
	KeyProjectAnalysisError   = "project_analysis_error"
)

const (
	maxTreeDepth      = 3
	maxKeyFileBytes   = 2000
	maxSummarySymbols = 200
)

// defaultIgnorePatterns are skipped during the directory walk. Patterns
// starting with "*." match file extensions.
var defaultIgnorePatterns = []string{
	"__pycache__", ".git", ".gitignore", "node_modules", ".venv", "venv",
	".env", ".pytest_cache", ".mypy_cache", ".tox", "dist", "build",
	"vendor", "*.pyc", "*.pyo", "*.egg-info", ".DS_Store", "Thumbs.db",
}

// keyFiles are read verbatim (truncated) into the analysis prompt when
// present at the project root.
var keyFiles = []string{
	"README.md", "go.mod", "package.json", "requirements.txt",
	"pyproject.toml", "Cargo.toml", "Makefile",
}

// ProjectAnalysis surveys the project: directory layout, key file contents,
// and a tree-sitter symbol inventory. The LLM-written summary lands in the
// context store for downstream units; when the LLM is unavailable or fails
// the raw structure is stored instead so the pipeline still has something
// to work with.
type ProjectAnalysis struct {
	deps    Deps
	root    string
	ignore  map[string]struct{}
	scanner *treescan.Scanner
}

var _ Unit = (*ProjectAnalysis)(nil)

// NewProjectAnalysis builds the unit. The project root comes from the
// project_root unit setting, then project.root, then the working directory.
func NewProjectAnalysis(deps Deps) Unit {
	root := deps.Config.GetString("project_root", deps.Config.GetString("project.root", ""))
	if root == "" {
		root, _ = os.Getwd()
	}

	ignore := make(map[string]struct{})
	for _, p := range defaultIgnorePatterns {
		ignore[p] = struct{}{}
	}
	for _, p := range deps.Config.GetStringSlice("ignore_patterns") {
		ignore[p] = struct{}{}
	}

	return &ProjectAnalysis{deps: deps, root: root, ignore: ignore, scanner: treescan.NewScanner()}
}

func (u *ProjectAnalysis) shouldIgnore(name string) bool {
	if _, ok := u.ignore[name]; ok {
		return true
	}
	for pattern := range u.ignore {
		if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(name, pattern[1:]) {
			return true
		}
	}
	return false
}

// directoryStructure renders an indented listing of root down to
// maxTreeDepth, directories before files, names case-insensitively sorted.
func (u *ProjectAnalysis) directoryStructure(dir string, depth int) string {
	if depth >= maxTreeDepth {
		return ""
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return strings.Repeat("  ", depth) + fmt.Sprintf("[unreadable: %v]", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	var lines []string
	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		if u.shouldIgnore(entry.Name()) {
			continue
		}
		if entry.IsDir() {
			lines = append(lines, indent+entry.Name()+"/")
			if sub := u.directoryStructure(filepath.Join(dir, entry.Name()), depth+1); sub != "" {
				lines = append(lines, sub)
			}
			continue
		}
		line := indent + entry.Name()
		if info, err := entry.Info(); err == nil {
			if size := info.Size(); size < 1024 {
				line += fmt.Sprintf(" (%d bytes)", size)
			} else {
				line += fmt.Sprintf(" (%dKB)", size/1024)
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// keyFilesContent reads the well-known project files, truncating long ones.
func (u *ProjectAnalysis) keyFilesContent() string {
	var sections []string
	for _, name := range keyFiles {
		if u.shouldIgnore(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(u.root, name))
		if err != nil {
			if !os.IsNotExist(err) {
				sections = append(sections, fmt.Sprintf("=== %s ===\n[error reading file: %v]\n", name, err))
			}
			continue
		}
		content := string(data)
		if len(content) > maxKeyFileBytes {
			content = content[:maxKeyFileBytes] + "\n... [truncated]"
		}
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s\n", name, content))
	}
	return strings.Join(sections, "\n")
}

// symbolSummary runs the tree-sitter scan over the project and returns the
// markdown inventory. Scan problems degrade to an empty summary.
func (u *ProjectAnalysis) symbolSummary() string {
	symbols, err := u.scanner.ScanTree(u.root, u.shouldIgnore)
	if err != nil {
		u.deps.logger().Warn("symbol scan failed", "root", u.root, "error", err)
		return ""
	}
	return treescan.Summary(symbols, maxSummarySymbols)
}

func (u *ProjectAnalysis) buildPrompt(task, structure, keyContent, symbols string) string {
	values := map[string]string{
		"project_name":        filepath.Base(u.root),
		"project_root":        u.root,
		"feature_request":     task,
		"directory_structure": structure,
		"key_files_content":   keyContent,
		"symbol_summary":      symbols,
	}

	content, err := u.deps.Templates.Load("project_analysis_template")
	if err != nil {
		u.deps.logger().Warn("analysis template unavailable, using fallback prompt", "error", err)
		return fmt.Sprintf(`Please analyze the following project structure and provide a comprehensive summary.

PROJECT DIRECTORY STRUCTURE:
%s

KEY FILES CONTENT:
%s

SYMBOL INVENTORY:
%s

Provide the technology stack, main components and their purposes, the
architecture overview, key dependencies, and notable conventions. Keep it
concise but comprehensive.`, structure, keyContent, symbols)
	}
	return template.Render(content, values)
}

// Execute maps the project and stores the analysis for downstream units.
// LLM failure is not fatal: the structure is stored along with the error.
func (u *ProjectAnalysis) Execute(ctx context.Context, task string) (string, error) {
	structure := u.directoryStructure(u.root, 0)
	prompt := u.buildPrompt(task, structure, u.keyFilesContent(), u.symbolSummary())

	if u.deps.LLM == nil {
		u.store(KeyProjectStructure, structure)
		return "Project structure analysis completed (no LLM available for detailed analysis).\n\nStructure:\n" + structure, nil
	}

	summary, err := u.deps.invoke(ctx, prompt)
	if err != nil {
		u.store(KeyProjectStructure, structure)
		u.store(KeyProjectAnalysisError, fmt.Sprintf("LLM analysis failed: %v", err))
		return fmt.Sprintf("Project structure mapped, but LLM analysis failed: %v", err), nil
	}

	u.store(KeyProjectAnalysisSummary, summary)
	u.store(KeyProjectStructure, structure)
	return "Project analysis completed successfully.\n\nSummary:\n" + summary, nil
}

func (u *ProjectAnalysis) store(key string, value any) {
	if u.deps.Store != nil {
		u.deps.Store.Set(key, value)
	}
}
