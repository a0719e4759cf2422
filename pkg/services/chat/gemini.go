package chat

import (
	"context"
	"fmt"

	"github.com/de-tools/pricelist-atlas/pkg/config"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, history []Turn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := genai.Role(genai.RoleModel)
		if t.Role == RoleUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	session, err := g.client.Chats.Create(ctx, g.model, nil, contents)
	if err != nil {
		return "", fmt.Errorf("failed to start chat: %w", err)
	}

	resp, err := session.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return resp.Text(), nil
}

// NewFromConfig returns an unconfigured Proxy when no API key is set, so the
// service can still start and report the missing key per request.
func NewFromConfig(ctx context.Context, cfg config.Chat) (*Proxy, error) {
	if cfg.APIKey == "" {
		return NewProxy(nil, cfg.Timeout), nil
	}
	completer, err := NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	return NewProxy(completer, cfg.Timeout), nil
}
