package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/bookmate-ai/bookmate-server/pkg/services/nats"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ChatModel struct {
	app         *config.AppConfig
	store       store.Store
	provider    insights.ChatProvider
	natsService *natsservice.NatsService
	logger      *logrus.Entry
}

type BotResponseReq struct {
	SessionId string `json:"sessionId"`
	Question  string `json:"question"`
}

type UpdateMessageReq struct {
	SessionId   string `json:"sessionId"`
	QuestionId  string `json:"questionId"`
	NewQuestion string `json:"newQuestion"`
}

type UpdateTitleReq struct {
	SessionId string `json:"sessionId"`
}

func NewChatModel(app *config.AppConfig, st store.Store, provider insights.ChatProvider, ns *natsservice.NatsService) *ChatModel {
	if app == nil {
		app = config.GetConfig()
	}
	if ns == nil {
		ns = natsservice.New(app)
	}

	return &ChatModel{
		app:         app,
		store:       st,
		provider:    provider,
		natsService: ns,
		logger:      app.Logger.WithField("model", "chat"),
	}
}

// GetBotResponse answers the question with the recent history of the session
// as context and stores both sides of the exchange.
func (m *ChatModel) GetBotResponse(ctx context.Context, req *BotResponseReq) (string, error) {
	if req.SessionId == "" || req.Question == "" {
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "sessionId and question are required")
	}
	log := m.logger.WithFields(logrus.Fields{
		"sessionId": req.SessionId,
		"method":    "GetBotResponse",
	})

	messages, err := m.buildMessages(ctx, req.SessionId, req.Question)
	if err != nil {
		return "", err
	}

	answer, err := m.provider.Complete(ctx, m.app.ChatSettings.Model, messages)
	if err != nil {
		log.WithError(err).Errorln("chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if err = m.saveExchange(ctx, req.SessionId, req.Question, answer); err != nil {
		log.WithError(err).Errorln("failed to store exchange")
		return "", err
	}
	return answer, nil
}

// StreamAnswer streams the answer to onText piece by piece and returns the
// complete text. With an empty sessionId the question is answered without
// history and nothing is stored.
func (m *ChatModel) StreamAnswer(ctx context.Context, sessionId, question string, onText func(text string)) (string, error) {
	messages := []insights.ChatMessage{{Role: insights.RoleUser, Content: question}}
	if sessionId != "" {
		var err error
		if messages, err = m.buildMessages(ctx, sessionId, question); err != nil {
			return "", err
		}
	}

	chunks, err := m.provider.CompleteStream(ctx, m.app.ChatSettings.Model, messages)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	var answer strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return answer.String(), fmt.Errorf("chat stream failed: %w", chunk.Err)
		}
		if chunk.Text == "" {
			continue
		}
		answer.WriteString(chunk.Text)
		onText(chunk.Text)
	}

	if sessionId == "" {
		_ = m.natsService.PublishChatExchange("", question, answer.String())
		return answer.String(), nil
	}
	if err = m.saveExchange(ctx, sessionId, question, answer.String()); err != nil {
		return answer.String(), err
	}
	return answer.String(), nil
}

// buildMessages maps the most recent history_limit messages to chat roles and
// appends the new question.
func (m *ChatModel) buildMessages(ctx context.Context, sessionId, question string) ([]insights.ChatMessage, error) {
	history, err := m.store.History(ctx, sessionId, m.app.ChatSettings.HistoryLimit)
	if err != nil {
		return nil, storeError(err, config.SessionNotFound)
	}

	messages := make([]insights.ChatMessage, 0, len(history)+1)
	for _, h := range history {
		role := insights.RoleUser
		if h.Sender == config.SenderAssistant {
			role = insights.RoleAssistant
		}
		messages = append(messages, insights.ChatMessage{Role: role, Content: h.Message})
	}
	messages = append(messages, insights.ChatMessage{Role: insights.RoleUser, Content: question})
	return messages, nil
}

func (m *ChatModel) saveExchange(ctx context.Context, sessionId, question, answer string) error {
	if _, err := m.store.AddMessage(ctx, sessionId, config.SenderUser, question); err != nil {
		return storeError(err, config.SessionNotFound)
	}
	if _, err := m.store.AddMessage(ctx, sessionId, config.SenderAssistant, answer); err != nil {
		return storeError(err, config.SessionNotFound)
	}
	if err := m.store.TouchSession(ctx, sessionId); err != nil {
		m.logger.WithError(err).WithField("sessionId", sessionId).Warnln("failed to update last_active")
	}

	_ = m.natsService.PublishChatExchange(sessionId, question, answer)
	return nil
}

// UpdateMessage replaces the text of a question and drops every message
// that came after it.
func (m *ChatModel) UpdateMessage(ctx context.Context, req *UpdateMessageReq) error {
	if req.SessionId == "" || req.QuestionId == "" || req.NewQuestion == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "sessionId, questionId and newQuestion are required")
	}

	err := m.store.TruncateFrom(ctx, req.SessionId, req.QuestionId, req.NewQuestion)
	return storeError(err, config.MessageNotFound)
}

// UpdateTitle generates a short title from the first question of the session.
func (m *ChatModel) UpdateTitle(ctx context.Context, req *UpdateTitleReq) (string, error) {
	if req.SessionId == "" {
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "sessionId is required")
	}

	first, err := m.store.FirstMessage(ctx, req.SessionId)
	if err != nil {
		return "", storeError(err, config.SessionHasNoMessages)
	}

	title, err := m.provider.Complete(ctx, m.app.ChatSettings.TitleModel, []insights.ChatMessage{
		{Role: insights.RoleUser, Content: fmt.Sprintf(config.TitlePrompt, first.Message)},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	title = strings.Trim(strings.TrimSpace(title), `"`)

	if err = m.store.UpdateSessionTitle(ctx, req.SessionId, title); err != nil {
		return "", storeError(err, config.SessionNotFound)
	}
	return title, nil
}
