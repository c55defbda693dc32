package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider implements insights.ChatProvider for OpenAI compatible endpoints.
type OpenAIProvider struct {
	client openai.Client
	logger *logrus.Entry
}

var _ insights.ChatProvider = (*OpenAIProvider)(nil)

// NewProvider constructs the OpenAI provider. base_url may point to any
// OpenAI compatible endpoint.
func NewProvider(cnf config.ChatSettings, log *logrus.Logger, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if cnf.ApiKey == "" {
		return nil, fmt.Errorf("openai provider requires api_key")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cnf.ApiKey)}
	if cnf.BaseUrl != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cnf.BaseUrl))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIProvider{
		client: openai.NewClient(reqOpts...),
		logger: log.WithField("provider", "openai"),
	}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, model string, messages []insights.ChatMessage) (string, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toMessageParams(messages),
	})
	if err != nil {
		return "", fmt.Errorf("openai: completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai: completion returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// CompleteStream streams the answer delta by delta.
func (p *OpenAIProvider) CompleteStream(ctx context.Context, model string, messages []insights.ChatMessage) (<-chan insights.ChatChunk, error) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toMessageParams(messages),
	})

	resultChan := make(chan insights.ChatChunk)
	go func() {
		defer close(resultChan)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case resultChan <- insights.ChatChunk{Text: choice.Delta.Content}:
				case <-ctx.Done():
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			p.logger.WithError(err).Errorln("openai: stream failed")
			select {
			case resultChan <- insights.ChatChunk{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return resultChan, nil
}

func toMessageParams(messages []insights.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case insights.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		case insights.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}
	return params
}
