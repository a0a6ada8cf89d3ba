package unit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/issueforge/internal/config"
	"github.com/dusk-indust/issueforge/internal/contextstore"
	"github.com/dusk-indust/issueforge/internal/github"
	"github.com/dusk-indust/issueforge/internal/llm"
	"github.com/dusk-indust/issueforge/internal/template"
)

type fakeLLM struct {
	prompt string
	out    string
	err    error
}

func (f *fakeLLM) Invoke(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeGhRunner struct {
	args []string
	out  []byte
	err  error
}

func (f *fakeGhRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.args = args
	return f.out, f.err
}

// newDeps builds a Deps with a fresh context store and an empty-dirs
// template loader (embedded defaults only), configured from baseJSON.
func newDeps(t *testing.T, baseJSON string) Deps {
	t.Helper()
	store := config.NewUnvalidated()
	if baseJSON != "" {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(baseJSON), 0o644))
		require.NoError(t, store.Load(path))
	}
	return Deps{
		Config:    config.NewView(store, "test-unit"),
		Store:     contextstore.New(),
		Templates: template.NewLoader(nil),
	}
}

func TestProjectAnalysisWithoutLLM(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# Demo"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "demo.go"), []byte("package pkg\n\nfunc Demo() {}\n"), 0o644))

	deps := newDeps(t, `{"project": {"root": `+jsonString(root)+`}}`)
	u := NewProjectAnalysis(deps)

	out, err := u.Execute(context.Background(), "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "no LLM available")

	structure, _ := deps.Store.Get(KeyProjectStructure, "").(string)
	assert.Contains(t, structure, "pkg/")
	assert.Contains(t, structure, "README.md")
	assert.False(t, deps.Store.Contains(KeyProjectAnalysisSummary))
}

func TestProjectAnalysisStoresSummary(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	deps := newDeps(t, `{"project": {"root": `+jsonString(root)+`}}`)
	fake := &fakeLLM{out: "A Go command-line project."}
	deps.LLM = fake
	u := NewProjectAnalysis(deps)

	out, err := u.Execute(context.Background(), "add a cache")
	require.NoError(t, err)
	assert.Contains(t, out, "completed successfully")

	assert.Equal(t, "A Go command-line project.", deps.Store.Get(KeyProjectAnalysisSummary, nil))
	assert.True(t, deps.Store.Contains(KeyProjectStructure))

	// The prompt carries the request, the layout, and the symbol scan.
	assert.Contains(t, fake.prompt, "add a cache")
	assert.Contains(t, fake.prompt, "main.go")
	assert.Contains(t, fake.prompt, "function `main`") // symbol inventory
}

func TestProjectAnalysisDegradesOnLLMFailure(t *testing.T) {
	deps := newDeps(t, `{"project": {"root": `+jsonString(t.TempDir())+`}}`)
	deps.LLM = &fakeLLM{err: errors.New("quota exhausted")}
	u := NewProjectAnalysis(deps)

	out, err := u.Execute(context.Background(), "task")
	require.NoError(t, err)
	assert.Contains(t, out, "LLM analysis failed")

	errMsg, _ := deps.Store.Get(KeyProjectAnalysisError, "").(string)
	assert.Contains(t, errMsg, "quota exhausted")
	assert.True(t, deps.Store.Contains(KeyProjectStructure))
}

func TestProjectAnalysisHonorsIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.pyc"), []byte("x"), 0o644))

	deps := newDeps(t, `{"project": {"root": `+jsonString(root)+`}}`)
	u := NewProjectAnalysis(deps).(*ProjectAnalysis)

	structure := u.directoryStructure(root, 0)
	assert.Contains(t, structure, "keep.txt")
	assert.NotContains(t, structure, "node_modules")
	assert.NotContains(t, structure, "skip.pyc")
}

func TestFeatureResearchBuildsPromptFromContext(t *testing.T) {
	deps := newDeps(t, "")
	deps.Store.Set("project_analysis_summary", "a web service")
	fake := &fakeLLM{out: "research document"}
	deps.LLM = fake

	u := NewFeatureResearch(deps)
	out, err := u.Execute(context.Background(), "add rate limiting")
	require.NoError(t, err)
	assert.Contains(t, out, "research document")

	assert.Contains(t, fake.prompt, "add rate limiting")
	assert.Contains(t, fake.prompt, "### Project Analysis Summary")
	assert.Contains(t, fake.prompt, "a web service")
	assert.Equal(t, "research document", deps.Store.Get(KeyFeatureResearchResult, nil))
}

func TestFeatureResearchFallsBackToTemplate(t *testing.T) {
	deps := newDeps(t, "")
	deps.LLM = &fakeLLM{err: errors.New("timeout")}

	u := NewFeatureResearch(deps)
	out, err := u.Execute(context.Background(), "add rate limiting")
	require.NoError(t, err)
	assert.Contains(t, out, "LLM analysis failed")

	result, _ := deps.Store.Get(KeyFeatureResearchResult, "").(string)
	assert.Contains(t, result, "add rate limiting")
	errMsg, _ := deps.Store.Get(KeyFeatureResearchError, "").(string)
	assert.Contains(t, errMsg, "timeout")
}

func TestPromptAssemblyWritesNumberedFile(t *testing.T) {
	root := t.TempDir()
	deps := newDeps(t, `{"project": {"root": `+jsonString(root)+`}}`)
	deps.Store.Set("feature_research_result", "the research")
	fake := &fakeLLM{out: "```markdown\n# Rate Limiting Middleware\n\nPlan body\n```"}
	deps.LLM = fake

	u := NewPromptAssembly(deps)
	path, err := u.Execute(context.Background(), "add rate limiting")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, OutputDirName, "001-rate-limiting-middleware.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Rate Limiting Middleware\n\nPlan body", string(data))

	assert.Contains(t, fake.prompt, "## Feature Research Result")
	assert.Equal(t, path, deps.Store.Get(KeyOutputFilePath, nil))

	// A second run picks the next number.
	path2, err := u.Execute(context.Background(), "add rate limiting")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path2), "002-"))
}

func TestPromptAssemblyWithoutLLMStillWritesFile(t *testing.T) {
	root := t.TempDir()
	deps := newDeps(t, `{"project": {"root": `+jsonString(root)+`}}`)

	u := NewPromptAssembly(deps)
	path, err := u.Execute(context.Background(), "add rate limiting")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "-basic")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No LLM available")
}

func TestPromptAssemblyLLMFailureWritesErrorFile(t *testing.T) {
	root := t.TempDir()
	deps := newDeps(t, `{"project": {"root": `+jsonString(root)+`}}`)
	deps.LLM = &fakeLLM{err: errors.New("boom")}

	u := NewPromptAssembly(deps)
	path, err := u.Execute(context.Background(), "add rate limiting")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "-error")

	errMsg, _ := deps.Store.Get(KeyPromptAssemblyError, "").(string)
	assert.Contains(t, errMsg, "boom")
}

const projectConfigJSON = `{
	"project": {
		"root": %q,
		"context": "A trading card game data platform",
		"tech_stack": "Go, PostgreSQL",
		"architecture": "monolith",
		"target_users": "competitive players",
		"constraints": "must stay rate-limit friendly"
	}
}`

func issueGenDeps(t *testing.T, root string) Deps {
	t.Helper()
	return newDeps(t, strings.ReplaceAll(projectConfigJSON, "%q", jsonString(root)))
}

func TestIssueGeneratorRequiresProjectConfig(t *testing.T) {
	deps := newDeps(t, `{"project": {"context": "x"}}`)
	deps.LLM = &fakeLLM{out: "irrelevant"}

	u := NewIssueGenerator(deps)
	_, err := u.Execute(context.Background(), "add search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"project.tech_stack"`)
}

func TestIssueGeneratorRequiresLLM(t *testing.T) {
	u := NewIssueGenerator(issueGenDeps(t, t.TempDir()))
	_, err := u.Execute(context.Background(), "add search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM available")
}

func TestIssueGeneratorWritesExtractedSpec(t *testing.T) {
	root := t.TempDir()
	deps := issueGenDeps(t, root)
	fake := &fakeLLM{out: "Sure! Here is the spec:\n\n# FEATURE: Card Search\n\n## Problem\nbody"}
	deps.LLM = fake

	u := NewIssueGenerator(deps)
	path, err := u.Execute(context.Background(), "add card search")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "-card-search.md"), "got %s", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# FEATURE: Card Search"))

	// The meta-prompt got the config values and the request.
	assert.Contains(t, fake.prompt, "A trading card game data platform")
	assert.Contains(t, fake.prompt, "add card search")
	assert.NotContains(t, fake.prompt, "PLACEHOLDER")

	assert.Equal(t, path, deps.Store.Get(KeyGeneratedIssuePath, nil))
}

func TestIssueGeneratorAutoPublishes(t *testing.T) {
	root := t.TempDir()
	configJSON := `{
		"project": {
			"root": ` + jsonString(root) + `,
			"context": "c", "tech_stack": "t", "architecture": "a",
			"target_users": "u", "constraints": "k"
		},
		"github": {"repo_owner": "dusk-indust", "repo_name": "tcg"},
		"automation": {"auto_create_issues": true}
	}`

	store := config.NewUnvalidated()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(configJSON), 0o644))
	require.NoError(t, store.Load(path))

	runner := &fakeGhRunner{out: []byte("https://github.com/dusk-indust/tcg/issues/7")}
	deps := Deps{
		Config:    config.NewView(store, "issue-generator"),
		Store:     contextstore.New(),
		Templates: template.NewLoader(nil),
		LLM:       &fakeLLM{out: "# FEATURE: Card Search\nbody"},
		Publisher: github.NewPublisher(store).WithRunner(runner),
	}

	u := NewIssueGenerator(deps)
	_, err := u.Execute(context.Background(), "add card search")
	require.NoError(t, err)

	require.NotNil(t, runner.args)
	assert.Contains(t, runner.args, "--title")
	assert.Contains(t, runner.args, "Card Search")
	assert.Equal(t, "https://github.com/dusk-indust/tcg/issues/7",
		deps.Store.Get(KeyGitHubIssueURL, nil))
}

func TestIssueGeneratorBuildPromptForDryRun(t *testing.T) {
	deps := issueGenDeps(t, t.TempDir())
	u := NewIssueGenerator(deps).(*IssueGenerator)

	prompt, err := u.BuildPrompt("add card search")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Go, PostgreSQL")
	assert.Contains(t, prompt, "add card search")
}

func jsonString(s string) string {
	b := strings.Builder{}
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
