package models

import (
	"context"
	"testing"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gofiber/fiber/v2"
)

func TestSessionModel(t *testing.T) {
	app := newTestAppConfig(t)
	st := store.NewMemoryStore()
	m := NewSessionModel(st, app.Logger)
	ctx := context.Background()

	userId, err := st.CreateUser(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	first, err := m.CreateSession(ctx, &CreateSessionReq{UserId: userId})
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.CreateSession(ctx, &CreateSessionReq{UserId: userId})
	if err != nil {
		t.Fatal(err)
	}
	if err = st.TouchSession(ctx, first); err != nil {
		t.Fatal(err)
	}

	sessions, err := m.ListSessions(ctx, userId)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0].SessionId != first || sessions[1].SessionId != second {
		t.Fatalf("expected most recently active first, got %+v", sessions)
	}
	if sessions[0].Title != nil {
		t.Error("new session must not have a title")
	}

	q, _ := st.AddMessage(ctx, first, config.SenderUser, "hello")
	_, _ = st.AddMessage(ctx, first, config.SenderAssistant, "hi there")

	history, err := m.SessionHistory(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0]["user"] != "hello" || history[0]["id"] != q.ID {
		t.Errorf("unexpected first entry %v", history[0])
	}
	if history[1]["assistant"] != "hi there" {
		t.Errorf("unexpected second entry %v", history[1])
	}

	if err = m.DeleteSession(ctx, first); err != nil {
		t.Fatal(err)
	}
	history, err = m.SessionHistory(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("messages must be removed with the session, got %v", history)
	}

	_, err = m.CreateSession(ctx, &CreateSessionReq{UserId: "not-an-id"})
	assertFiberCode(t, err, fiber.StatusBadRequest)
}
