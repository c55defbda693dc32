package google

import (
	"context"
	"fmt"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GoogleProvider implements insights.ChatProvider with Gemini models.
type GoogleProvider struct {
	client *genai.Client
	logger *logrus.Entry
}

var _ insights.ChatProvider = (*GoogleProvider)(nil)

func NewProvider(ctx context.Context, cnf config.ChatSettings, log *logrus.Logger) (*GoogleProvider, error) {
	if cnf.ApiKey == "" {
		return nil, fmt.Errorf("google provider requires api_key")
	}

	cc := &genai.ClientConfig{
		APIKey:  cnf.ApiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cnf.BaseUrl != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cnf.BaseUrl}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GoogleProvider{
		client: client,
		logger: log.WithField("provider", "google"),
	}, nil
}

func (p *GoogleProvider) Complete(ctx context.Context, model string, messages []insights.ChatMessage) (string, error) {
	return complete(ctx, p.client, model, messages)
}

func (p *GoogleProvider) CompleteStream(ctx context.Context, model string, messages []insights.ChatMessage) (<-chan insights.ChatChunk, error) {
	return newChatStream(ctx, p.client, model, messages, p.logger)
}
