package store

import (
	"context"
	"errors"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid id")
	ErrDuplicate = errors.New("duplicate record")
)

// Store keeps users, chat sessions, messages and book metadata.
// Every backend returns ErrInvalidID for ids it cannot parse and
// ErrNotFound when a looked up record does not exist.
type Store interface {
	CreateUser(ctx context.Context, name, email string) (string, error)
	FindUserID(ctx context.Context, name, email string) (string, error)

	CreateSession(ctx context.Context, userID string) (string, error)
	GetSession(ctx context.Context, sessionID string) (*dbmodels.Session, error)
	UpdateSessionTitle(ctx context.Context, sessionID, title string) error
	TouchSession(ctx context.Context, sessionID string) error
	// ListSessions returns the sessions of the user, most recently active first.
	ListSessions(ctx context.Context, userID string) ([]dbmodels.Session, error)
	// DeleteSession removes the session together with its messages.
	DeleteSession(ctx context.Context, sessionID string) error

	AddMessage(ctx context.Context, sessionID, sender, text string) (*dbmodels.Message, error)
	// History returns the messages of a session in ascending order. With a
	// positive limit only the most recent limit messages are returned.
	History(ctx context.Context, sessionID string, limit int) ([]dbmodels.Message, error)
	FirstMessage(ctx context.Context, sessionID string) (*dbmodels.Message, error)
	// TruncateFrom deletes every message of the session newer than messageID
	// and replaces the text of messageID with newText.
	TruncateFrom(ctx context.Context, sessionID, messageID, newText string) error

	AddBook(ctx context.Context, book *dbmodels.Book) (string, error)
	FindBook(ctx context.Context, userID, fileName string) (*dbmodels.Book, error)
	GetBook(ctx context.Context, userID, bookID string) (*dbmodels.Book, error)
	DeleteBook(ctx context.Context, userID, bookID string) (bool, error)
	ListBooks(ctx context.Context, userID string) ([]dbmodels.Book, error)
}
