package models

import (
	"context"
	"testing"

	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gofiber/fiber/v2"
)

func TestUserModel(t *testing.T) {
	app := newTestAppConfig(t)
	m := NewUserModel(store.NewMemoryStore(), app.Logger)
	ctx := context.Background()

	req := &UserReq{Username: "alice", Email: "alice@example.com"}
	if err := m.CreateUser(ctx, req); err != nil {
		t.Fatal(err)
	}

	id, err := m.GetUserId(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a user id")
	}

	_, err = m.GetUserId(ctx, &UserReq{Username: "bob", Email: "bob@example.com"})
	assertFiberCode(t, err, fiber.StatusNotFound)

	err = m.CreateUser(ctx, &UserReq{Username: "alice"})
	assertFiberCode(t, err, fiber.StatusUnprocessableEntity)
}
