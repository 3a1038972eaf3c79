// Package ollama wraps the local Ollama server behind the one call the
// dispatch loop needs: system prompt + history in, completion text out.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"haru/app/config"
	"haru/app/store"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/llms"
	langollama "github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

const maxGenerateDuration = 120 * time.Second

type Client struct {
	llm   *langollama.LLM
	model string
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	llm, err := langollama.New(
		langollama.WithServerURL(cfg.Ollama.Host),
		langollama.WithModel(cfg.Ollama.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &Client{
		llm:   llm,
		model: cfg.Ollama.Model,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Generate runs one completion over the system prompt and conversation
// history. Tool-result turns are fed back as user messages, which is the
// shape the tag protocol was trained against.
func (c *Client) Generate(ctx context.Context, systemPrompt string, history []store.Turn) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt))

	for _, t := range history {
		var role schema.ChatMessageType
		switch t.Role {
		case store.RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}

		messages = append(messages, llms.TextParts(role, t.Content))
	}

	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
