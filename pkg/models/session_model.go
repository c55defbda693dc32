package models

import (
	"context"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SessionModel struct {
	store  store.Store
	logger *logrus.Entry
}

type CreateSessionReq struct {
	UserId string `json:"userId"`
}

type SessionInfo struct {
	SessionId  string    `json:"session_id"`
	Title      *string   `json:"title"`
	LastActive time.Time `json:"last_active"`
}

func NewSessionModel(st store.Store, logger *logrus.Logger) *SessionModel {
	return &SessionModel{
		store:  st,
		logger: logger.WithField("model", "session"),
	}
}

func (m *SessionModel) CreateSession(ctx context.Context, req *CreateSessionReq) (string, error) {
	if req.UserId == "" {
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "userId is required")
	}

	id, err := m.store.CreateSession(ctx, req.UserId)
	if err != nil {
		return "", storeError(err, config.UserNotFound)
	}
	return id, nil
}

func (m *SessionModel) ListSessions(ctx context.Context, userId string) ([]SessionInfo, error) {
	sessions, err := m.store.ListSessions(ctx, userId)
	if err != nil {
		return nil, storeError(err, config.UserNotFound)
	}

	list := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		list = append(list, SessionInfo{
			SessionId:  s.ID,
			Title:      s.Title,
			LastActive: s.LastActive,
		})
	}
	return list, nil
}

// SessionHistory returns every message of the session oldest first, each as
// {"<sender>": text, "id": id}.
func (m *SessionModel) SessionHistory(ctx context.Context, sessionId string) ([]map[string]string, error) {
	msgs, err := m.store.History(ctx, sessionId, 0)
	if err != nil {
		return nil, storeError(err, config.SessionNotFound)
	}

	list := make([]map[string]string, 0, len(msgs))
	for _, msg := range msgs {
		list = append(list, map[string]string{
			msg.Sender: msg.Message,
			"id":       msg.ID,
		})
	}
	return list, nil
}

func (m *SessionModel) DeleteSession(ctx context.Context, sessionId string) error {
	if err := m.store.DeleteSession(ctx, sessionId); err != nil {
		return storeError(err, config.SessionNotFound)
	}
	m.logger.WithField("sessionId", sessionId).Infoln("session deleted")
	return nil
}
