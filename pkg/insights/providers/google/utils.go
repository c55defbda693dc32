package google

import (
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"google.golang.org/genai"
)

// toGenaiContent converts the chat history to the genai library's format.
// System messages become the system instruction of the request.
func toGenaiContent(messages []insights.ChatMessage) ([]*genai.Content, *genai.GenerateContentConfig) {
	var content []*genai.Content
	var system []*genai.Part

	for _, m := range messages {
		switch m.Role {
		case insights.RoleAssistant:
			content = append(content, genai.NewContentFromText(m.Content, genai.RoleModel))
		case insights.RoleSystem:
			system = append(system, genai.NewPartFromText(m.Content))
		default:
			content = append(content, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	if len(system) == 0 {
		return content, nil
	}
	return content, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromParts(system, genai.RoleUser),
	}
}
