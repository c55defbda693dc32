// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
)

// Run exercises s against the common store contract. The store should be empty
// or at least not contain users named like the ones created here.
func Run(t *testing.T, s store.Store) {
	ctx := context.Background()
	name := "tester-" + time.Now().Format("150405.000000")
	email := name + "@example.com"

	var userID, sessionID string

	t.Run("CreateAndFindUser", func(t *testing.T) {
		id, err := s.CreateUser(ctx, name, email)
		if err != nil {
			t.Fatal(err)
		}
		userID, err = s.FindUserID(ctx, name, email)
		if err != nil {
			t.Fatal(err)
		}
		if userID != id {
			t.Errorf("expected user id %s, got %s", id, userID)
		}

		_, err = s.FindUserID(ctx, name, "other@example.com")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		if _, err := s.CreateSession(ctx, "not-an-id"); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("expected ErrInvalidID, got %v", err)
		}
		if _, err := s.History(ctx, "not-an-id", 0); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("Sessions", func(t *testing.T) {
		first, err := s.CreateSession(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		sess, err := s.GetSession(ctx, first)
		if err != nil {
			t.Fatal(err)
		}
		if sess.Title != nil {
			t.Errorf("new session should not have a title, got %q", *sess.Title)
		}
		if !sess.CreatedAt.Equal(sess.LastActive) {
			t.Errorf("created_at and last_active should match on creation")
		}

		time.Sleep(5 * time.Millisecond)
		sessionID, err = s.CreateSession(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}

		list, err := s.ListSessions(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || list[0].ID != sessionID {
			t.Fatalf("expected newest session first, got %+v", list)
		}

		time.Sleep(5 * time.Millisecond)
		if err = s.TouchSession(ctx, first); err != nil {
			t.Fatal(err)
		}
		if err = s.UpdateSessionTitle(ctx, first, "Dune Summary"); err != nil {
			t.Fatal(err)
		}
		list, err = s.ListSessions(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		if list[0].ID != first {
			t.Errorf("touched session should be listed first")
		}
		if list[0].Title == nil || *list[0].Title != "Dune Summary" {
			t.Errorf("unexpected title %v", list[0].Title)
		}

		if err = s.DeleteSession(ctx, first); err != nil {
			t.Fatal(err)
		}
		if _, err = s.GetSession(ctx, first); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err = s.TouchSession(ctx, userID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown session, got %v", err)
		}
	})

	t.Run("Messages", func(t *testing.T) {
		if _, err := s.FirstMessage(ctx, sessionID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound for empty session, got %v", err)
		}

		texts := []string{"q1", "a1", "q2", "a2", "q3", "a3"}
		ids := make([]string, len(texts))
		for i, text := range texts {
			sender := config.SenderUser
			if i%2 == 1 {
				sender = config.SenderAssistant
			}
			m, err := s.AddMessage(ctx, sessionID, sender, text)
			if err != nil {
				t.Fatal(err)
			}
			ids[i] = m.ID
		}

		all, err := s.History(ctx, sessionID, 0)
		if err != nil {
			t.Fatal(err)
		}
		assertTexts(t, all, texts...)

		recent, err := s.History(ctx, sessionID, 4)
		if err != nil {
			t.Fatal(err)
		}
		assertTexts(t, recent, "q2", "a2", "q3", "a3")

		first, err := s.FirstMessage(ctx, sessionID)
		if err != nil {
			t.Fatal(err)
		}
		if first.Message != "q1" || first.Sender != config.SenderUser {
			t.Errorf("unexpected first message %+v", first)
		}

		if err = s.TruncateFrom(ctx, sessionID, ids[2], "q2 edited"); err != nil {
			t.Fatal(err)
		}
		all, err = s.History(ctx, sessionID, 0)
		if err != nil {
			t.Fatal(err)
		}
		assertTexts(t, all, "q1", "a1", "q2 edited")

		if err = s.TruncateFrom(ctx, sessionID, userID, "nope"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown message, got %v", err)
		}
	})

	t.Run("DeleteSessionRemovesMessages", func(t *testing.T) {
		if err := s.DeleteSession(ctx, sessionID); err != nil {
			t.Fatal(err)
		}
		msgs, err := s.History(ctx, sessionID, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(msgs) != 0 {
			t.Errorf("expected no messages after delete, got %d", len(msgs))
		}
	})

	t.Run("Books", func(t *testing.T) {
		book := &dbmodels.Book{
			UserID:     userID,
			FileName:   "dune.epub",
			Size:       1024,
			Format:     "epub",
			UploadDate: time.Now().UTC(),
		}
		id, err := s.AddBook(ctx, book)
		if err != nil {
			t.Fatal(err)
		}

		dup := *book
		if _, err = s.AddBook(ctx, &dup); !errors.Is(err, store.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}

		found, err := s.FindBook(ctx, userID, "dune.epub")
		if err != nil {
			t.Fatal(err)
		}
		if found.ID != id {
			t.Errorf("expected book %s, got %s", id, found.ID)
		}

		got, err := s.GetBook(ctx, userID, id)
		if err != nil {
			t.Fatal(err)
		}
		if got.ObjectPath() != userID+"/dune.epub" || got.Size != 1024 || got.Format != "epub" {
			t.Errorf("unexpected book %+v", got)
		}

		books, err := s.ListBooks(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		if len(books) != 1 {
			t.Errorf("expected 1 book, got %d", len(books))
		}

		deleted, err := s.DeleteBook(ctx, userID, id)
		if err != nil || !deleted {
			t.Fatalf("expected delete to succeed, got %v %v", deleted, err)
		}
		deleted, err = s.DeleteBook(ctx, userID, id)
		if err != nil || deleted {
			t.Errorf("second delete should report false, got %v %v", deleted, err)
		}
		if _, err = s.GetBook(ctx, userID, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func assertTexts(t *testing.T, msgs []dbmodels.Message, want ...string) {
	t.Helper()
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i, m := range msgs {
		if m.Message != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], m.Message)
		}
	}
}
