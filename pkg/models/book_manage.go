package models

import (
	"context"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type BookReq struct {
	UserId string `json:"user_id" form:"user_id" query:"user_id"`
	FileId string `json:"file_id" form:"file_id" query:"file_id"`
}

func (r *BookReq) validate() error {
	if r.UserId == "" || r.FileId == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "user_id and file_id are required")
	}
	return nil
}

// storedBook returns the metadata of the book and makes sure the file is
// still in the object store.
func (m *BookModel) storedBook(ctx context.Context, req *BookReq) (*dbmodels.Book, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	book, err := m.store.GetBook(ctx, req.UserId, req.FileId)
	if err != nil {
		return nil, storeError(err, config.FileNotFound)
	}

	exists, err := m.storage.Exists(ctx, book.ObjectPath())
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fiber.NewError(fiber.StatusNotFound, config.FileNotFoundInStorage)
	}
	return book, nil
}

func (m *BookModel) DeleteBook(ctx context.Context, req *BookReq) error {
	log := m.logger.WithFields(logrus.Fields{
		"userId": req.UserId,
		"fileId": req.FileId,
		"method": "DeleteBook",
	})

	book, err := m.storedBook(ctx, req)
	if err != nil {
		return err
	}

	if err = m.storage.Delete(ctx, book.ObjectPath()); err != nil {
		log.WithError(err).Errorln("failed to delete file from storage")
		return err
	}

	deleted, err := m.store.DeleteBook(ctx, req.UserId, req.FileId)
	if err != nil {
		return storeError(err, config.FileNotFound)
	}
	if !deleted {
		log.Warnln("book metadata was already removed")
	}

	_ = m.natsService.PublishBookRemoved(req.UserId, req.FileId, book.FileName)
	return nil
}

// GenerateLink returns a temporary download url for the book.
func (m *BookModel) GenerateLink(ctx context.Context, req *BookReq) (string, error) {
	book, err := m.storedBook(ctx, req)
	if err != nil {
		return "", err
	}

	return m.storage.SignedURL(ctx, book.ObjectPath(), m.app.StorageInfo.LinkValidity)
}

func (m *BookModel) ListBooks(ctx context.Context, userId string) ([]BookInfo, error) {
	books, err := m.store.ListBooks(ctx, userId)
	if err != nil {
		return nil, storeError(err, config.UserNotFound)
	}

	list := make([]BookInfo, 0, len(books))
	for _, b := range books {
		list = append(list, BookInfo{
			Id:         b.ID,
			FileName:   b.FileName,
			FileFormat: b.Format,
			UploadDate: b.UploadDate,
			FileSize:   b.Size,
		})
	}
	return list, nil
}
