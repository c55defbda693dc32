package models

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/services/catalog"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CatalogSearchReq struct {
	BookName string `query:"book_name"`
	Number   int    `query:"number"`
}

type CatalogSearchRes struct {
	Count int            `json:"count"`
	Books []catalog.Book `json:"books"`
}

type CatalogImportReq struct {
	BookDetailUrl string `form:"book_detail_url"`
	UserId        string `form:"user_id"`
}

func (m *BookModel) SearchCatalog(ctx context.Context, req *CatalogSearchReq) (*CatalogSearchRes, error) {
	if req.BookName == "" || req.Number <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "book_name and a positive number are required")
	}

	books, err := m.catalog.Search(ctx, req.BookName, req.Number)
	if err != nil {
		var upErr *catalog.UpstreamError
		if errors.As(err, &upErr) {
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, fmt.Sprintf("Failed to fetch from LibGen: %s", err.Error()))
		}
		m.logger.WithError(err).Errorln("catalog search failed")
		return nil, fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Internal server error: %s", err.Error()))
	}
	if len(books) == 0 {
		return nil, fiber.NewError(fiber.StatusNotFound, config.NoBooksFound)
	}

	return &CatalogSearchRes{
		Count: len(books),
		Books: books,
	}, nil
}

// ImportFromCatalog downloads the book behind a catalog detail page and
// stores it in the library of the user.
func (m *BookModel) ImportFromCatalog(ctx context.Context, req *CatalogImportReq) (*UploadedBookRes, error) {
	if req.BookDetailUrl == "" || req.UserId == "" {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "book_detail_url and user_id are required")
	}
	log := m.logger.WithFields(logrus.Fields{
		"userId": req.UserId,
		"url":    req.BookDetailUrl,
		"method": "ImportFromCatalog",
	})

	downloaded, err := m.catalog.Download(ctx, req.BookDetailUrl)
	if err != nil {
		var parseErr *catalog.ParseError
		var upErr *catalog.UpstreamError
		switch {
		case errors.As(err, &parseErr):
			return nil, fiber.NewError(fiber.StatusNotFound, parseErr.Msg)
		case errors.As(err, &upErr):
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, fmt.Sprintf("Failed to fetch pages: %s", err.Error()))
		}
		log.WithError(err).Errorln("catalog download failed")
		return nil, fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Internal server error: %s", err.Error()))
	}
	defer downloaded.Cleanup()

	file, err := os.Open(downloaded.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return m.UploadBook(ctx, req.UserId, downloaded.FileName, file, downloaded.Size)
}
