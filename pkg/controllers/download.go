package controllers

import (
	"errors"
	"net/url"
	"path/filepath"

	"github.com/bookmate-ai/bookmate-server/pkg/services/objectstore"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

// DownloadController serves files of the local object store behind
// signed download links.
type DownloadController struct {
	storage objectstore.Storage
}

func NewDownloadController(storage objectstore.Storage) *DownloadController {
	return &DownloadController{
		storage: storage,
	}
}

func (dc *DownloadController) HandleDownloadBook(c *fiber.Ctx) error {
	local, ok := dc.storage.(*objectstore.LocalStorage)
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	}

	token, err := url.PathUnescape(c.Params("token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid token")
	}

	file, err := local.VerifyToken(token)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("file not found")
		}
		return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
	}

	mtype, err := mimetype.DetectFile(file)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("file not found")
	}

	c.Attachment(filepath.Base(file))
	c.Set(fiber.HeaderContentType, mtype.String())
	return c.SendFile(file)
}
