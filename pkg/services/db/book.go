package dbservice

import (
	"context"
	"errors"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"gorm.io/gorm"
)

func (s *DatabaseService) AddBook(ctx context.Context, book *dbmodels.Book) (string, error) {
	if err := checkID(book.UserID); err != nil {
		return "", err
	}
	book.ID = newID()
	if book.UploadDate.IsZero() {
		book.UploadDate = time.Now().UTC()
	}

	result := s.db.WithContext(ctx).Create(book)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return "", store.ErrDuplicate
		}
		return "", result.Error
	}
	return book.ID, nil
}

func (s *DatabaseService) FindBook(ctx context.Context, userID, fileName string) (*dbmodels.Book, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	info := new(dbmodels.Book)
	cond := &dbmodels.Book{
		UserID:   userID,
		FileName: fileName,
	}

	result := s.db.WithContext(ctx).Where(cond).Take(info)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return info, nil
}

func (s *DatabaseService) GetBook(ctx context.Context, userID, bookID string) (*dbmodels.Book, error) {
	if err := checkID(userID, bookID); err != nil {
		return nil, err
	}
	info := new(dbmodels.Book)
	cond := &dbmodels.Book{
		ID:     bookID,
		UserID: userID,
	}

	result := s.db.WithContext(ctx).Where(cond).Take(info)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return info, nil
}

func (s *DatabaseService) DeleteBook(ctx context.Context, userID, bookID string) (bool, error) {
	if err := checkID(userID, bookID); err != nil {
		return false, err
	}
	cond := &dbmodels.Book{
		ID:     bookID,
		UserID: userID,
	}

	result := s.db.WithContext(ctx).Where(cond).Delete(&dbmodels.Book{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *DatabaseService) ListBooks(ctx context.Context, userID string) ([]dbmodels.Book, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	var books []dbmodels.Book
	cond := &dbmodels.Book{
		UserID: userID,
	}

	result := s.db.WithContext(ctx).Where(cond).Order("upload_date ASC").Find(&books)
	if result.Error != nil {
		return nil, result.Error
	}
	return books, nil
}
