package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_ConfiguredDirWinsOverEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example_template.md"), []byte("custom"), 0o644))

	l := NewLoader([]string{dir})

	content, err := l.Load("example_template")
	require.NoError(t, err)
	assert.Equal(t, "custom", content)
}

func TestLoader_FallsBackToEmbeddedDefaults(t *testing.T) {
	l := NewLoader([]string{t.TempDir()})

	content, err := l.Load("meta-prompt-template.md")
	require.NoError(t, err)
	assert.Contains(t, content, "[USER_INPUT_PLACEHOLDER]")
}

func TestLoader_UnknownTemplate(t *testing.T) {
	l := NewLoader(nil)

	_, err := l.Load("no-such-template")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-template")
}

func TestLoader_SearchOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, "t.md"), []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(second, "t.md"), []byte("second"), 0o644))

	l := NewLoader([]string{first, second})

	content, err := l.Load("t")
	require.NoError(t, err)
	assert.Equal(t, "first", content, "directories are searched in order")
}

func TestRender_SubstitutesKnownLeavesUnknown(t *testing.T) {
	out := Render("Hello {{ name }}, {{ unknown }} stays", map[string]string{"name": "world"})

	assert.Equal(t, "Hello world, {{ unknown }} stays", out)
}

func TestRenderContext(t *testing.T) {
	out := RenderContext("before {{ context.seen }} after", map[string]string{"seen": "VALUE"})

	assert.Equal(t, "before VALUE after", out)
}

func TestExpandContextLoop(t *testing.T) {
	content := "head\n{% for key, value in available_context.items() %}\nloop body\n{% endfor %}\ntail"

	out := ExpandContextLoop(content, "\n### Project Structure\ncmd/\n")

	assert.NotContains(t, out, "endfor")
	assert.Contains(t, out, "### Project Structure")
	assert.Contains(t, out, "head")
	assert.Contains(t, out, "tail")
}

func TestReplaceMarkers(t *testing.T) {
	out := ReplaceMarkers("ctx: [PROJECT_CONTEXT_PLACEHOLDER]", map[string]string{
		"[PROJECT_CONTEXT_PLACEHOLDER]": "a web app",
	})

	assert.Equal(t, "ctx: a web app", out)
}
