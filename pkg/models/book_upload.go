package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UploadBook validates the file and stores it under "{userId}/{fileName}"
// together with its metadata.
func (m *BookModel) UploadBook(ctx context.Context, userId, fileName string, file io.ReadSeeker, size int64) (*UploadedBookRes, error) {
	log := m.logger.WithFields(logrus.Fields{
		"userId":   userId,
		"fileName": fileName,
		"method":   "UploadBook",
	})

	fileName = filepath.Base(filepath.Clean("/" + fileName))
	format, err := m.validateExtension(fileName)
	if err != nil {
		return nil, err
	}
	if userId == "" {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "user_id is required")
	}

	maxSize := int64(m.app.UploadFileSettings.MaxSize) * 1024 * 1024
	if size > maxSize {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file too large: max allowed is %dMB", m.app.UploadFileSettings.MaxSize))
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		log.WithError(err).Errorln("failed to detect mime type")
		return nil, err
	}
	if err = m.validateMimeType(mtype); err != nil {
		return nil, err
	}
	// Reset reader to the beginning of the file for the upload
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	acquired, lockValue, err := m.locker.LockBookUpload(ctx, userId, fileName, config.UploadLockTTL)
	if err != nil {
		log.WithError(err).Errorln("failed to acquire upload lock")
		return nil, err
	}
	if !acquired {
		return nil, fiber.NewError(fiber.StatusConflict, config.UploadInProgress)
	}
	defer func() {
		// use a fresh context, the request may already be cancelled
		if err := m.locker.UnlockBookUpload(context.Background(), userId, fileName, lockValue); err != nil {
			log.WithError(err).Warnln("failed to release upload lock")
		}
	}()

	_, err = m.store.FindBook(ctx, userId, fileName)
	switch {
	case err == nil:
		return nil, fiber.NewError(fiber.StatusConflict, config.FileAlreadyExists)
	case !errors.Is(err, store.ErrNotFound):
		return nil, storeError(err, "")
	}

	book := &dbmodels.Book{
		UserID:     userId,
		FileName:   fileName,
		Size:       size,
		Format:     format,
		UploadDate: time.Now().UTC(),
	}
	objectPath := book.ObjectPath()

	if err = m.storage.Put(ctx, objectPath, file, mtype.String()); err != nil {
		log.WithError(err).Errorln("failed to store file")
		return nil, err
	}

	id, err := m.store.AddBook(ctx, book)
	if err != nil {
		if delErr := m.storage.Delete(ctx, objectPath); delErr != nil {
			log.WithError(delErr).Warnln("failed to remove stored file")
		}
		return nil, storeError(err, config.FileNotFound)
	}

	log.WithField("fileId", id).Infoln("book uploaded")
	_ = m.natsService.PublishBookAdded(userId, id, fileName)

	return &UploadedBookRes{
		Message: "File uploaded successfully",
		FileId:  id,
		GcsPath: objectPath,
	}, nil
}

func (m *BookModel) validateExtension(fileName string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" || !slices.Contains(m.app.UploadFileSettings.AllowedTypes, ext) {
		return "", fiber.NewError(fiber.StatusBadRequest, config.OnlyPdfOrEpubAllowed)
	}
	return ext, nil
}

func (m *BookModel) validateMimeType(mtype *mimetype.MIME) error {
	fileExtension := strings.Replace(mtype.Extension(), ".", "", 1)
	if !slices.Contains(m.app.UploadFileSettings.AllowedTypes, fileExtension) {
		if fileExtension == "" {
			return fiber.NewError(fiber.StatusUnsupportedMediaType, "invalid file")
		}
		return fiber.NewError(fiber.StatusUnsupportedMediaType, mtype.Extension()+" file type not allowed")
	}
	return nil
}
