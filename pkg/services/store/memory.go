package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It is used by the
// "memory" database driver and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    []dbmodels.User
	sessions map[string]*dbmodels.Session
	messages map[string][]dbmodels.Message
	books    map[string]*dbmodels.Book
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*dbmodels.Session),
		messages: make(map[string][]dbmodels.Message),
		books:    make(map[string]*dbmodels.Book),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, name, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := dbmodels.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: s.now(),
	}
	s.users = append(s.users, u)
	return u.ID, nil
}

func (s *MemoryStore) FindUserID(_ context.Context, name, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Name == name && u.Email == email {
			return u.ID, nil
		}
	}
	return "", ErrNotFound
}

func (s *MemoryStore) CreateSession(_ context.Context, userID string) (string, error) {
	if err := parseID(userID); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &dbmodels.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastActive: now,
	}
	s.sessions[sess.ID] = sess
	return sess.ID, nil
}

func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (*dbmodels.Session, error) {
	if err := parseID(sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) UpdateSessionTitle(_ context.Context, sessionID, title string) error {
	return s.updateSession(sessionID, func(sess *dbmodels.Session) {
		sess.Title = &title
	})
}

func (s *MemoryStore) TouchSession(_ context.Context, sessionID string) error {
	return s.updateSession(sessionID, func(sess *dbmodels.Session) {
		sess.LastActive = s.now()
	})
}

func (s *MemoryStore) updateSession(sessionID string, fn func(sess *dbmodels.Session)) error {
	if err := parseID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	fn(sess)
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context, userID string) ([]dbmodels.Session, error) {
	if err := parseID(userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []dbmodels.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			list = append(list, *sess)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastActive.After(list[j].LastActive)
	})
	return list, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	if err := parseID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}

func (s *MemoryStore) AddMessage(_ context.Context, sessionID, sender, text string) (*dbmodels.Message, error) {
	if err := parseID(sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := dbmodels.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    sender,
		Message:   text,
		Timestamp: s.now(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], m)
	return &m, nil
}

func (s *MemoryStore) History(_ context.Context, sessionID string, limit int) ([]dbmodels.Message, error) {
	if err := parseID(sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]dbmodels.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) FirstMessage(_ context.Context, sessionID string) (*dbmodels.Message, error) {
	if err := parseID(sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	m := msgs[0]
	return &m, nil
}

func (s *MemoryStore) TruncateFrom(_ context.Context, sessionID, messageID, newText string) error {
	if err := parseID(sessionID); err != nil {
		return err
	}
	if err := parseID(messageID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Message = newText
			s.messages[sessionID] = msgs[:i+1]
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) AddBook(_ context.Context, book *dbmodels.Book) (string, error) {
	if err := parseID(book.UserID); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.books {
		if b.UserID == book.UserID && b.FileName == book.FileName {
			return "", ErrDuplicate
		}
	}
	cp := *book
	cp.ID = uuid.NewString()
	if cp.UploadDate.IsZero() {
		cp.UploadDate = s.now()
	}
	s.books[cp.ID] = &cp
	book.ID = cp.ID
	return cp.ID, nil
}

func (s *MemoryStore) FindBook(_ context.Context, userID, fileName string) (*dbmodels.Book, error) {
	if err := parseID(userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.UserID == userID && b.FileName == fileName {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetBook(_ context.Context, userID, bookID string) (*dbmodels.Book, error) {
	if err := parseID(userID); err != nil {
		return nil, err
	}
	if err := parseID(bookID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[bookID]
	if !ok || b.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) DeleteBook(_ context.Context, userID, bookID string) (bool, error) {
	if err := parseID(userID); err != nil {
		return false, err
	}
	if err := parseID(bookID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[bookID]
	if !ok || b.UserID != userID {
		return false, nil
	}
	delete(s.books, bookID)
	return true, nil
}

func (s *MemoryStore) ListBooks(_ context.Context, userID string) ([]dbmodels.Book, error) {
	if err := parseID(userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []dbmodels.Book
	for _, b := range s.books {
		if b.UserID == userID {
			list = append(list, *b)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadDate.Before(list[j].UploadDate)
	})
	return list, nil
}
