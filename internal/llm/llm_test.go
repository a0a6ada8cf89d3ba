package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/issueforge/internal/config"
)

// capturingProvider records the settings it was invoked with.
type capturingProvider struct {
	settings Settings
	reply    string
	err      error
}

func (p *capturingProvider) Generate(_ context.Context, _ string, settings Settings) (string, error) {
	p.settings = settings
	return p.reply, p.err
}

func storeFromJSON(t *testing.T, body string) *config.Store {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	s := config.NewUnvalidated()
	require.NoError(t, s.Load(path))
	return s
}

func TestResolve_DefaultsWhenConfigEmpty(t *testing.T) {
	m := NewManager(config.NewUnvalidated())

	settings := m.Resolve()

	assert.Equal(t, "gemini", settings.Provider)
	assert.Equal(t, "gemini-2.0-flash-exp", settings.Model)
	assert.Equal(t, 0.7, settings.Temperature)
	assert.Equal(t, 8192, settings.MaxTokens)
}

func TestResolve_GlobalSettingsOverrideDefaults(t *testing.T) {
	m := NewManager(storeFromJSON(t, `{
		"llm_settings": {"default_provider": "claude", "model": "claude-sonnet-4", "temperature": 0.3, "top_k": 10}
	}`))

	settings := m.Resolve()

	assert.Equal(t, "claude", settings.Provider)
	assert.Equal(t, "claude-sonnet-4", settings.Model)
	assert.Equal(t, 0.3, settings.Temperature)
	assert.Equal(t, 10, settings.TopK)
	assert.Equal(t, 8192, settings.MaxTokens, "unset keys keep defaults")
}

func TestResolve_UnitTierOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	unitCfg := filepath.Join(dir, "agents", "research", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(unitCfg), 0o755))
	require.NoError(t, os.WriteFile(unitCfg, []byte(`{"llm": {"model": "unit-model", "temperature": 0.1}}`), 0o644))

	base := filepath.Join(dir, "base.json")
	require.NoError(t, os.WriteFile(base, []byte(`{
		"agents": {"directory": "`+filepath.ToSlash(filepath.Join(dir, "agents"))+`"},
		"llm_settings": {"model": "global-model", "temperature": 0.9, "max_tokens": 1024}
	}`), 0o644))

	s := config.NewUnvalidated()
	require.NoError(t, s.Load(base))
	m := NewManager(s)

	settings := m.Resolve(WithUnit("research"))

	assert.Equal(t, "unit-model", settings.Model)
	assert.Equal(t, 0.1, settings.Temperature)
	assert.Equal(t, 1024, settings.MaxTokens, "keys absent from the unit tier fall through to global")
}

func TestResolve_CallOptionsWinOverEverything(t *testing.T) {
	m := NewManager(storeFromJSON(t, `{"llm_settings": {"default_provider": "claude", "temperature": 0.9}}`))

	settings := m.Resolve(WithProvider("gemini"), WithTemperature(0.0), WithMaxTokens(64))

	assert.Equal(t, "gemini", settings.Provider)
	assert.Equal(t, 0.0, settings.Temperature)
	assert.Equal(t, 64, settings.MaxTokens)
}

func TestInvoke_EmptyPrompt(t *testing.T) {
	m := NewManager(config.NewUnvalidated())

	_, err := m.Invoke(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestInvoke_UnsupportedProvider(t *testing.T) {
	m := NewManager(config.NewUnvalidated())

	_, err := m.Invoke(context.Background(), "hello", WithProvider("carrier-pigeon"))

	require.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestInvoke_DispatchesResolvedSettings(t *testing.T) {
	m := NewManager(storeFromJSON(t, `{"llm_settings": {"default_provider": "fake", "model": "m1"}}`))
	fake := &capturingProvider{reply: "generated"}
	m.RegisterProvider("fake", fake)

	out, err := m.Invoke(context.Background(), "prompt", WithTemperature(0.5))

	require.NoError(t, err)
	assert.Equal(t, "generated", out)
	assert.Equal(t, "m1", fake.settings.Model)
	assert.Equal(t, 0.5, fake.settings.Temperature)
}

func TestGemini_MissingCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewGemini(nil).Generate(context.Background(), "hi", defaults())

	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestClaude_MissingCredentials(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClaude().Generate(context.Background(), "hi", Settings{Model: "claude-sonnet-4", MaxTokens: 16})

	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestDry_ReturnsPrompt(t *testing.T) {
	out, err := Dry{}.Invoke(context.Background(), "the prompt")

	require.NoError(t, err)
	assert.Equal(t, "the prompt", out)
}
