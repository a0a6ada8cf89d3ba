package github

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/issueforge/internal/config"
)

type fakeRunner struct {
	gotName string
	gotArgs []string
	output  []byte
	err     error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.gotName = name
	f.gotArgs = args
	return f.output, f.err
}

func storeWith(t *testing.T, body string) *config.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	store := config.NewUnvalidated()
	require.NoError(t, store.Load(path))
	return store
}

func TestPublishBuildsGhInvocation(t *testing.T) {
	store := storeWith(t, `{
		"github": {
			"repo_owner": "dusk-indust",
			"repo_name": "issueforge",
			"default_labels": ["enhancement", "needs-triage"],
			"default_project": "Roadmap"
		}
	}`)

	runner := &fakeRunner{output: []byte("https://github.com/dusk-indust/issueforge/issues/42\n")}
	pub := NewPublisher(store).WithRunner(runner)
	require.True(t, pub.Configured())

	url, err := pub.Publish(context.Background(), "Add widgets", "/tmp/issue.md")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/dusk-indust/issueforge/issues/42", url)

	assert.Equal(t, "gh", runner.gotName)
	assert.Equal(t, []string{
		"issue", "create",
		"--repo", "dusk-indust/issueforge",
		"--title", "Add widgets",
		"--body-file", "/tmp/issue.md",
		"--label", "enhancement",
		"--label", "needs-triage",
		"--project", "Roadmap",
	}, runner.gotArgs)
}

func TestPublishFailureIncludesManualCommand(t *testing.T) {
	store := storeWith(t, `{"github": {"repo_owner": "o", "repo_name": "r"}}`)

	runner := &fakeRunner{output: []byte("auth required"), err: errors.New("exit status 1")}
	pub := NewPublisher(store).WithRunner(runner)

	_, err := pub.Publish(context.Background(), "t", "body.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth required")
	assert.Contains(t, err.Error(), `gh issue create --repo "o/r" --body-file "body.md"`)
}

func TestPublishRequiresRepoCoordinates(t *testing.T) {
	store := storeWith(t, `{}`)
	pub := NewPublisher(store).WithRunner(&fakeRunner{})
	assert.False(t, pub.Configured())

	_, err := pub.Publish(context.Background(), "t", "body.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo_owner")
}
