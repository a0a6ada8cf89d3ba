// Package github publishes generated issue specifications to GitHub through
// the gh CLI. It is a thin outward-facing wrapper: the pipeline works fine
// without it, and a publish failure never destroys the generated file; the
// user gets the manual command to run instead.
package github

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/dusk-indust/issueforge/internal/config"
)

// issueURLRe finds the created issue URL in gh output.
var issueURLRe = regexp.MustCompile(`https://github\.com/\S+/issues/\d+`)

// CommandRunner abstracts external command execution so tests can observe
// the exact gh invocation without a network.
type CommandRunner interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Publisher creates GitHub issues from generated specification files.
type Publisher struct {
	runner  Runner
	owner   string
	repo    string
	project string
	labels  []string
}

// Runner is the dependency seam; see CommandRunner.
type Runner = CommandRunner

// NewPublisher reads the github section of the base configuration. Owner
// and repo are required for publishing; Publish reports their absence.
func NewPublisher(cfg *config.Store) *Publisher {
	return &Publisher{
		runner:  execRunner{},
		owner:   cfg.GetString("github.repo_owner", ""),
		repo:    cfg.GetString("github.repo_name", ""),
		project: cfg.GetString("github.default_project", ""),
		labels:  cfg.GetStringSlice("github.default_labels"),
	}
}

// WithRunner swaps the command runner, for tests.
func (p *Publisher) WithRunner(r Runner) *Publisher {
	p.runner = r
	return p
}

// Configured reports whether the repository coordinates needed for
// publishing are present.
func (p *Publisher) Configured() bool {
	return p.owner != "" && p.repo != ""
}

// ManualCommand returns the gh invocation a user can run by hand when
// automatic publishing is disabled or fails.
func (p *Publisher) ManualCommand(bodyFile string) string {
	return fmt.Sprintf("gh issue create --repo %q --body-file %q", p.owner+"/"+p.repo, bodyFile)
}

// Publish creates an issue titled title with the contents of bodyFile and
// returns the created issue URL.
func (p *Publisher) Publish(ctx context.Context, title, bodyFile string) (string, error) {
	if !p.Configured() {
		return "", fmt.Errorf("github: repo_owner and repo_name must be configured to publish")
	}

	args := []string{
		"issue", "create",
		"--repo", p.owner + "/" + p.repo,
		"--title", title,
		"--body-file", bodyFile,
	}
	for _, label := range p.labels {
		args = append(args, "--label", label)
	}
	if p.project != "" {
		args = append(args, "--project", p.project)
	}

	output, err := p.runner.Run(ctx, "gh", args...)
	if err != nil {
		return "", fmt.Errorf("github: gh issue create failed: %w (output: %s); create it manually with: %s",
			err, strings.TrimSpace(string(output)), p.ManualCommand(bodyFile))
	}

	if url := issueURLRe.FindString(string(output)); url != "" {
		return url, nil
	}
	// gh succeeded but printed no URL we recognize; treat as created.
	return strings.TrimSpace(string(output)), nil
}
