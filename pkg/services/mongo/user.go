package mongoservice

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoService) CreateUser(ctx context.Context, name, email string) (string, error) {
	doc := userDoc{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	oid, _ := result.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

func (s *MongoService) FindUserID(ctx context.Context, name, email string) (string, error) {
	var doc userDoc
	opts := options.FindOne().SetSort(bson.M{"created_at": 1})

	err := s.users.FindOne(ctx, bson.M{"name": name, "email": email}, opts).Decode(&doc)
	if err != nil {
		return "", notFound(err)
	}
	return doc.ID.Hex(), nil
}
