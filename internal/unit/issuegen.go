package unit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dusk-indust/issueforge/internal/template"
)

// Context keys written by IssueGenerator.
const (
	KeyGeneratedIssuePath = "generated_issue_path"
	KeyGitHubIssueURL     = "github_issue_url"
)

// MetaPromptTemplate is the template the issue generator populates.
const MetaPromptTemplate = "meta-prompt-template.md"

// requiredProjectKeys must be present in configuration before an issue can
// be generated; the meta-prompt is useless without them.
var requiredProjectKeys = []string{
	"project.context", "project.tech_stack", "project.architecture",
	"project.target_users", "project.constraints",
}

var safeFeatureRe = regexp.MustCompile(`[^\w\-_]`)

// IssueGenerator turns a feature description into a GitHub-ready issue
// specification. Unlike the earlier pipeline units it cannot degrade: an
// absent LLM, missing template, or missing project configuration is an
// error, because its entire output is LLM-generated.
type IssueGenerator struct {
	deps      Deps
	outputDir string
}

var _ Unit = (*IssueGenerator)(nil)

// NewIssueGenerator builds the unit.
func NewIssueGenerator(deps Deps) Unit {
	root := deps.Config.GetString("project.root", "")
	if root == "" {
		root, _ = os.Getwd()
	}
	return &IssueGenerator{deps: deps, outputDir: filepath.Join(root, OutputDirName)}
}

// Execute generates the issue specification, writes it to a timestamped
// file, and returns the file path. When automation.auto_create_issues is
// set and GitHub coordinates are configured, the issue is also published;
// publish failures are logged with the manual command but do not fail the
// unit, since the file already exists.
func (u *IssueGenerator) Execute(ctx context.Context, task string) (string, error) {
	prompt, err := u.BuildPrompt(task)
	if err != nil {
		return "", err
	}

	if u.deps.LLM == nil {
		return "", fmt.Errorf("issue generator: no LLM available")
	}
	raw, err := u.deps.invoke(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("issue generator: LLM call failed: %w", err)
	}
	result := extractStructuredOutput(raw)

	if err := os.MkdirAll(u.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("issue generator: create output directory: %w", err)
	}

	title := extractFeatureTitle(result)
	slug := slugify(title, 60)
	if slug == "" {
		safe := safeFeatureRe.ReplaceAllString(task, "_")
		if len(safe) > 50 {
			safe = safe[:50]
		}
		slug = slugify(strings.ReplaceAll(safe, "_", " "), 60)
		if slug == "" {
			slug = "untitled-feature"
		}
	}

	timestamp := time.Now().Format("2006-01-02-150405")
	outputFile := filepath.Join(u.outputDir, timestamp+"-"+slug+".md")
	if err := os.WriteFile(outputFile, []byte(result), 0o644); err != nil {
		return "", fmt.Errorf("issue generator: write %s: %w", outputFile, err)
	}
	u.deps.logger().Info("issue specification saved", "path", outputFile)
	u.store(KeyGeneratedIssuePath, outputFile)

	u.publish(ctx, task, title, outputFile)
	return outputFile, nil
}

// BuildPrompt loads the meta-prompt template and fills in the project
// configuration plus the feature description. Exposed so --dry-run can show
// the prompt without touching the LLM or the filesystem.
func (u *IssueGenerator) BuildPrompt(task string) (string, error) {
	content, err := u.deps.Templates.Load(MetaPromptTemplate)
	if err != nil {
		return "", fmt.Errorf("issue generator: %w", err)
	}

	values := make(map[string]string, len(requiredProjectKeys))
	for _, key := range requiredProjectKeys {
		value := u.deps.Config.GetString(key, "")
		if value == "" {
			return "", fmt.Errorf("issue generator: missing required configuration key %q", key)
		}
		values[key] = value
	}

	return template.ReplaceMarkers(content, map[string]string{
		"[PROJECT_CONTEXT_PLACEHOLDER]": values["project.context"],
		"[TECH_STACK_PLACEHOLDER]":      values["project.tech_stack"],
		"[ARCHITECTURE_PLACEHOLDER]":    values["project.architecture"],
		"[USER_BASE_PLACEHOLDER]":       values["project.target_users"],
		"[CONSTRAINTS_PLACEHOLDER]":     values["project.constraints"],
		"[USER_INPUT_PLACEHOLDER]":      task,
	}), nil
}

func (u *IssueGenerator) publish(ctx context.Context, task, title, outputFile string) {
	pub := u.deps.Publisher
	if pub == nil || !pub.Configured() {
		return
	}
	u.deps.logger().Info("issue can be created manually", "command", pub.ManualCommand(outputFile))

	if !u.deps.Config.GetBool("automation.auto_create_issues", false) {
		return
	}
	if title == "" {
		title = task
	}
	url, err := pub.Publish(ctx, title, outputFile)
	if err != nil {
		u.deps.logger().Warn("automatic issue creation failed", "error", err)
		return
	}
	u.deps.logger().Info("github issue created", "url", url)
	u.store(KeyGitHubIssueURL, url)
}

func (u *IssueGenerator) store(key string, value any) {
	if u.deps.Store != nil {
		u.deps.Store.Set(key, value)
	}
}
