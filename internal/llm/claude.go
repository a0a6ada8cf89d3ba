package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude talks to the Anthropic Messages API.
type Claude struct{}

// NewClaude builds the provider. The client is constructed per call so the
// key is read from the environment at invocation time, matching gemini.
func NewClaude() *Claude {
	return &Claude{}
}

// Generate implements Provider.
func (c *Claude) Generate(ctx context.Context, prompt string, settings Settings) (string, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrMissingCredentials)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: anthropic.Model(settings.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		MaxTokens:   int64(settings.MaxTokens),
		Temperature: anthropic.Float(settings.Temperature),
		TopP:        anthropic.Float(settings.TopP),
	})
	if err != nil {
		return "", fmt.Errorf("claude: call %s: %w", settings.Model, err)
	}
	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("claude: %s returned empty content", settings.Model)
	}

	block := message.Content[0]
	if block.Type != "text" {
		return "", fmt.Errorf("claude: %s returned non-text content %q", settings.Model, block.Type)
	}
	return block.Text, nil
}
