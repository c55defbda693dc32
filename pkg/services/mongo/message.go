package mongoservice

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ObjectIDs grow monotonically within a process, so _id breaks ties between
// messages stored within the same millisecond.
var (
	ascending  = bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}
	descending = bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}
)

func (s *MongoService) AddMessage(ctx context.Context, sessionID, sender, text string) (*dbmodels.Message, error) {
	sid, err := objectID(sessionID)
	if err != nil {
		return nil, err
	}
	doc := messageDoc{
		SessionID: sid,
		Sender:    sender,
		Message:   text,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}

	result, err := s.messages.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to add message: %w", err)
	}
	doc.ID, _ = result.InsertedID.(primitive.ObjectID)
	m := doc.toModel()
	return &m, nil
}

func (s *MongoService) History(ctx context.Context, sessionID string, limit int) ([]dbmodels.Message, error) {
	sid, err := objectID(sessionID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(ascending)
	if limit > 0 {
		opts = options.Find().SetSort(descending).SetLimit(int64(limit))
	}

	cursor, err := s.messages.Find(ctx, bson.M{"session_id": sid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve history: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	messages := make([]dbmodels.Message, 0, len(docs))
	for i := range docs {
		messages = append(messages, docs[i].toModel())
	}
	if limit > 0 {
		slices.Reverse(messages)
	}
	return messages, nil
}

func (s *MongoService) FirstMessage(ctx context.Context, sessionID string) (*dbmodels.Message, error) {
	sid, err := objectID(sessionID)
	if err != nil {
		return nil, err
	}

	var doc messageDoc
	opts := options.FindOne().SetSort(ascending)
	if err = s.messages.FindOne(ctx, bson.M{"session_id": sid}, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoService) TruncateFrom(ctx context.Context, sessionID, messageID, newText string) error {
	sid, err := objectID(sessionID)
	if err != nil {
		return err
	}
	mid, err := objectID(messageID)
	if err != nil {
		return err
	}

	var question messageDoc
	err = s.messages.FindOne(ctx, bson.M{"_id": mid, "session_id": sid}).Decode(&question)
	if err != nil {
		return notFound(err)
	}

	_, err = s.messages.DeleteMany(ctx, bson.M{
		"session_id": sid,
		"$or": bson.A{
			bson.M{"timestamp": bson.M{"$gt": question.Timestamp}},
			bson.M{"timestamp": question.Timestamp, "_id": bson.M{"$gt": mid}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete newer messages: %w", err)
	}

	result, err := s.messages.UpdateOne(ctx, bson.M{"_id": mid}, bson.M{"$set": bson.M{"message": newText}})
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
