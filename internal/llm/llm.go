// Package llm is the black-box text-generation capability consumed by
// processing units: given a prompt and resolved settings, return generated
// text or fail. Settings resolve through a four-tier precedence, lowest to
// highest: hardcoded defaults, global llm_settings, per-unit llm overrides,
// explicit call-time options.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/dusk-indust/issueforge/internal/config"
)

var (
	// ErrEmptyPrompt rejects Invoke calls with nothing to send.
	ErrEmptyPrompt = errors.New("llm: prompt cannot be empty")

	// ErrMissingCredentials means the selected provider has no API key in
	// the environment.
	ErrMissingCredentials = errors.New("llm: missing credentials")

	// ErrUnsupportedProvider means the resolved provider name matches no
	// registered provider.
	ErrUnsupportedProvider = errors.New("llm: unsupported provider")
)

// Settings is a fully resolved generation request configuration.
type Settings struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
	TopK        int
}

// defaults is the lowest-precedence tier.
func defaults() Settings {
	return Settings{
		Provider:    "gemini",
		Model:       "gemini-2.0-flash-exp",
		Temperature: 0.7,
		MaxTokens:   8192,
		TopP:        0.8,
		TopK:        40,
	}
}

// Invoker is the capability surface units depend on.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, opts ...Option) (string, error)
}

// Provider executes one synchronous generation call. Retry and backoff, if
// any, live behind this interface; the orchestration layer never retries.
type Provider interface {
	Generate(ctx context.Context, prompt string, settings Settings) (string, error)
}

// Option is a call-time override, the highest precedence tier.
type Option func(*callOptions)

type callOptions struct {
	unit        string
	provider    *string
	model       *string
	temperature *float64
	maxTokens   *int
	topP        *float64
	topK        *int
}

// WithUnit applies the named unit's merged llm configuration block as the
// third precedence tier.
func WithUnit(name string) Option { return func(c *callOptions) { c.unit = name } }

// WithProvider overrides the provider for this call only.
func WithProvider(p string) Option { return func(c *callOptions) { c.provider = &p } }

// WithModel overrides the model for this call only.
func WithModel(m string) Option { return func(c *callOptions) { c.model = &m } }

// WithTemperature overrides the sampling temperature for this call only.
func WithTemperature(t float64) Option { return func(c *callOptions) { c.temperature = &t } }

// WithMaxTokens overrides the output token budget for this call only.
func WithMaxTokens(n int) Option { return func(c *callOptions) { c.maxTokens = &n } }

// WithTopP overrides nucleus sampling for this call only.
func WithTopP(p float64) Option { return func(c *callOptions) { c.topP = &p } }

// WithTopK overrides top-k sampling for this call only.
func WithTopK(k int) Option { return func(c *callOptions) { c.topK = &k } }

// Manager resolves settings against the configuration store and dispatches
// to the registered provider.
type Manager struct {
	cfg       *config.Store
	providers map[string]Provider
}

// NewManager builds a Manager with the gemini and claude providers
// registered.
func NewManager(cfg *config.Store) *Manager {
	return &Manager{
		cfg: cfg,
		providers: map[string]Provider{
			"gemini": NewGemini(nil),
			"claude": NewClaude(),
		},
	}
}

// RegisterProvider installs or replaces a provider, mainly for tests.
func (m *Manager) RegisterProvider(name string, p Provider) {
	m.providers[name] = p
}

// Invoke resolves settings through all four tiers and executes a single
// synchronous generation call against the selected provider.
func (m *Manager) Invoke(ctx context.Context, prompt string, opts ...Option) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	settings := m.resolve(call)

	provider, ok := m.providers[settings.Provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, settings.Provider)
	}
	return provider.Generate(ctx, prompt, settings)
}

// Resolve computes the effective Settings for a call without executing it.
func (m *Manager) Resolve(opts ...Option) Settings {
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}
	return m.resolve(call)
}

func (m *Manager) resolve(call callOptions) Settings {
	settings := defaults()

	// Tier 2: global llm_settings from the base configuration.
	applyTree(&settings, m.cfg.Snapshot(), "llm_settings")

	// Tier 3: the unit's merged llm block.
	if call.unit != "" {
		if merged, err := m.cfg.UnitConfig(call.unit); err == nil {
			applyTree(&settings, merged, "llm")
		}
		// A missing or unreadable unit config falls back to the tiers
		// already applied.
	}

	// Tier 4: explicit call-time overrides.
	if call.provider != nil {
		settings.Provider = *call.provider
	}
	if call.model != nil {
		settings.Model = *call.model
	}
	if call.temperature != nil {
		settings.Temperature = *call.temperature
	}
	if call.maxTokens != nil {
		settings.MaxTokens = *call.maxTokens
	}
	if call.topP != nil {
		settings.TopP = *call.topP
	}
	if call.topK != nil {
		settings.TopK = *call.topK
	}

	return settings
}

// applyTree copies the recognized keys under prefix in a JSON-shaped tree
// onto settings, skipping absent keys.
func applyTree(settings *Settings, tree map[string]any, prefix string) {
	section, ok := tree[prefix].(map[string]any)
	if !ok {
		return
	}
	if v, ok := section["default_provider"].(string); ok {
		settings.Provider = v
	}
	if v, ok := section["provider"].(string); ok {
		settings.Provider = v
	}
	if v, ok := section["model"].(string); ok {
		settings.Model = v
	}
	if v, ok := section["temperature"].(float64); ok {
		settings.Temperature = v
	}
	if v, ok := section["max_tokens"].(float64); ok {
		settings.MaxTokens = int(v)
	}
	if v, ok := section["top_p"].(float64); ok {
		settings.TopP = v
	}
	if v, ok := section["top_k"].(float64); ok {
		settings.TopK = int(v)
	}
}
