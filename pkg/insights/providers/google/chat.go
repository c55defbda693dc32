package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// newChatStream streams the answer to the last message of the conversation.
func newChatStream(ctx context.Context, client *genai.Client, model string, messages []insights.ChatMessage, logger *logrus.Entry) (<-chan insights.ChatChunk, error) {
	contents, cfg := toGenaiContent(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	resultChan := make(chan insights.ChatChunk)
	go func() {
		defer close(resultChan)

		for chunk, err := range client.Models.GenerateContentStream(ctx, model, contents, cfg) {
			if err != nil {
				logger.WithError(err).Error("error getting next chunk from gemini stream")
				select {
				case resultChan <- insights.ChatChunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			if chunk == nil {
				continue
			}

			text := candidateText(chunk)
			if text == "" {
				continue
			}
			select {
			case resultChan <- insights.ChatChunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return resultChan, nil
}

// complete uses the non-streaming API.
func complete(ctx context.Context, client *genai.Client, model string, messages []insights.ChatMessage) (string, error) {
	contents, cfg := toGenaiContent(messages)
	if len(contents) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", fmt.Errorf("no content found in response")
	}
	return text, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	var textBuilder strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				textBuilder.WriteString(part.Text)
			}
		}
	}
	return textBuilder.String()
}
