package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"kiosk/internal/domain"
)

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Infer(ctx context.Context, utterance string, cartItems []domain.LineItem, menu []domain.CatalogItem) (domain.Intent, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildOrderPrompt(cartItems, menu)},
			{Role: openai.ChatMessageRoleUser, Content: utterance},
		},
	})
	if err != nil {
		return domain.Intent{}, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return domain.Intent{}, fmt.Errorf("%w: empty completion", domain.ErrServiceUnavailable)
	}
	return ParseIntent(resp.Choices[0].Message.Content)
}
