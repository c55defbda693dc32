package mongoservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
	messagesCollection = "messages"
	booksCollection    = "uploaded_files"
)

// MongoService is the document database backed store.Store. Collection
// names and field names match the documents written by earlier releases.
type MongoService struct {
	users    *mongo.Collection
	sessions *mongo.Collection
	messages *mongo.Collection
	books    *mongo.Collection
	logger   *logrus.Entry
}

var _ store.Store = (*MongoService)(nil)

func New(db *mongo.Database, logger *logrus.Logger) *MongoService {
	return &MongoService{
		users:    db.Collection(usersCollection),
		sessions: db.Collection(sessionsCollection),
		messages: db.Collection(messagesCollection),
		books:    db.Collection(booksCollection),
		logger:   logger.WithField("service", "mongodb"),
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "email", Value: 1}}},
		},
		s.sessions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "last_active", Value: -1}}},
		},
		s.messages: {
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		s.books: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "file_name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrInvalidID
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}
