package models

import (
	"errors"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gofiber/fiber/v2"
)

// storeError converts store errors into client facing errors. notFoundMsg is
// used when the record doesn't exist.
func storeError(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrInvalidID):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, config.FileAlreadyExists)
	}
	return err
}
