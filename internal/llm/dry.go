package llm

import "context"

// Compile-time interface check.
var _ Invoker = (*Dry)(nil)

// Dry is an Invoker for offline runs: it returns the assembled prompt
// unchanged instead of sending it anywhere, so the user can inspect exactly
// what the units would have asked the model.
type Dry struct{}

// Invoke returns the prompt as the "generation".
func (Dry) Invoke(_ context.Context, prompt string, _ ...Option) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return prompt, nil
}
