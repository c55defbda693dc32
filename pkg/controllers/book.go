package controllers

import (
	"github.com/bookmate-ai/bookmate-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type BookController struct {
	BookModel *models.BookModel
}

func NewBookController(bm *models.BookModel) *BookController {
	return &BookController{
		BookModel: bm,
	}
}

func (bc *BookController) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return sendError(c, fiber.NewError(fiber.StatusUnprocessableEntity, "missing 'file' in form-data"))
	}
	userId := c.FormValue("user_id")
	if userId == "" {
		return sendError(c, fiber.NewError(fiber.StatusUnprocessableEntity, "missing 'user_id' in form-data"))
	}

	file, err := fh.Open()
	if err != nil {
		return sendError(c, err)
	}
	defer file.Close()

	res, err := bc.BookModel.UploadBook(c.UserContext(), userId, fh.Filename, file, fh.Size)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(res)
}

func (bc *BookController) HandleDelete(c *fiber.Ctx) error {
	req := new(models.BookReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	if err := bc.BookModel.DeleteBook(c.UserContext(), req); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "File deleted successfully.",
	})
}

func (bc *BookController) HandleGenerateLink(c *fiber.Ctx) error {
	req := new(models.BookReq)
	if err := c.QueryParser(req); err != nil {
		return sendError(c, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error()))
	}

	link, err := bc.BookModel.GenerateLink(c.UserContext(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"temporary_url": link,
	})
}

func (bc *BookController) HandleListBooks(c *fiber.Ctx) error {
	books, err := bc.BookModel.ListBooks(c.UserContext(), c.Params("userId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"books": books,
	})
}

func (bc *BookController) HandleSearchCatalog(c *fiber.Ctx) error {
	req := new(models.CatalogSearchReq)
	if err := c.QueryParser(req); err != nil {
		return sendError(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}

	res, err := bc.BookModel.SearchCatalog(c.UserContext(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(res)
}

func (bc *BookController) HandleCatalogUpload(c *fiber.Ctx) error {
	req := new(models.CatalogImportReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	res, err := bc.BookModel.ImportFromCatalog(c.UserContext(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(res)
}
