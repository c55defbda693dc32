package controllers

import (
	"github.com/bookmate-ai/bookmate-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserModel *models.UserModel
}

func NewUserController(um *models.UserModel) *UserController {
	return &UserController{
		UserModel: um,
	}
}

func (uc *UserController) HandleCreateUser(c *fiber.Ctx) error {
	req := new(models.UserReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	if err := uc.UserModel.CreateUser(c.UserContext(), req); err != nil {
		return sendError(c, err)
	}
	return c.JSON(nil)
}

func (uc *UserController) HandleGetUserId(c *fiber.Ctx) error {
	req := new(models.UserReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	id, err := uc.UserModel.GetUserId(c.UserContext(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"userId": id,
	})
}
