package llm

import (
	"context"
	"fmt"

	"kiosk/internal/domain"
)

// Provider turns a raw utterance plus the current cart and catalog into a
// structured order intent. Implementations call an external language model;
// the kiosk core only depends on this boundary.
type Provider interface {
	Infer(ctx context.Context, utterance string, cartItems []domain.LineItem, menu []domain.CatalogItem) (domain.Intent, error)
}

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported intent provider: %s", cfg.Provider)
	}
}
