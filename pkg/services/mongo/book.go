package mongoservice

import (
	"context"
	"fmt"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoService) AddBook(ctx context.Context, book *dbmodels.Book) (string, error) {
	uid, err := objectID(book.UserID)
	if err != nil {
		return "", err
	}
	if book.UploadDate.IsZero() {
		book.UploadDate = time.Now().UTC()
	}
	doc := bookDoc{
		UserID:     uid,
		FileName:   book.FileName,
		Size:       book.Size,
		Format:     book.Format,
		UploadDate: book.UploadDate,
	}

	result, err := s.books.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicate
		}
		return "", fmt.Errorf("failed to add book: %w", err)
	}
	oid, _ := result.InsertedID.(primitive.ObjectID)
	book.ID = oid.Hex()
	return book.ID, nil
}

func (s *MongoService) FindBook(ctx context.Context, userID, fileName string) (*dbmodels.Book, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return s.findOneBook(ctx, bson.M{"user_id": uid, "file_name": fileName})
}

func (s *MongoService) GetBook(ctx context.Context, userID, bookID string) (*dbmodels.Book, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	bid, err := objectID(bookID)
	if err != nil {
		return nil, err
	}
	return s.findOneBook(ctx, bson.M{"_id": bid, "user_id": uid})
}

func (s *MongoService) findOneBook(ctx context.Context, filter bson.M) (*dbmodels.Book, error) {
	var doc bookDoc
	if err := s.books.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoService) DeleteBook(ctx context.Context, userID, bookID string) (bool, error) {
	uid, err := objectID(userID)
	if err != nil {
		return false, err
	}
	bid, err := objectID(bookID)
	if err != nil {
		return false, err
	}

	result, err := s.books.DeleteOne(ctx, bson.M{"_id": bid, "user_id": uid})
	if err != nil {
		return false, fmt.Errorf("failed to delete book: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (s *MongoService) ListBooks(ctx context.Context, userID string) ([]dbmodels.Book, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.M{"upload_date": 1})
	cursor, err := s.books.Find(ctx, bson.M{"user_id": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	books := make([]dbmodels.Book, 0, len(docs))
	for i := range docs {
		books = append(books, docs[i].toModel())
	}
	return books, nil
}
