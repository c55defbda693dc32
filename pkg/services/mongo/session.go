package mongoservice

import (
	"context"
	"fmt"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoService) CreateSession(ctx context.Context, userID string) (string, error) {
	uid, err := objectID(userID)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := sessionDoc{
		UserID:     uid,
		CreatedAt:  now,
		LastActive: now,
	}

	result, err := s.sessions.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	oid, _ := result.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

func (s *MongoService) GetSession(ctx context.Context, sessionID string) (*dbmodels.Session, error) {
	oid, err := objectID(sessionID)
	if err != nil {
		return nil, err
	}

	var doc sessionDoc
	if err = s.sessions.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoService) UpdateSessionTitle(ctx context.Context, sessionID, title string) error {
	return s.updateSession(ctx, sessionID, bson.M{"title": title})
}

func (s *MongoService) TouchSession(ctx context.Context, sessionID string) error {
	return s.updateSession(ctx, sessionID, bson.M{"last_active": time.Now().UTC()})
}

func (s *MongoService) updateSession(ctx context.Context, sessionID string, set bson.M) error {
	oid, err := objectID(sessionID)
	if err != nil {
		return err
	}

	result, err := s.sessions.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MongoService) ListSessions(ctx context.Context, userID string) ([]dbmodels.Session, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.M{"last_active": -1})
	cursor, err := s.sessions.Find(ctx, bson.M{"user_id": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []sessionDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	sessions := make([]dbmodels.Session, 0, len(docs))
	for i := range docs {
		sessions = append(sessions, docs[i].toModel())
	}
	return sessions, nil
}

func (s *MongoService) DeleteSession(ctx context.Context, sessionID string) error {
	oid, err := objectID(sessionID)
	if err != nil {
		return err
	}

	if _, err = s.messages.DeleteMany(ctx, bson.M{"session_id": oid}); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}
	if _, err = s.sessions.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
