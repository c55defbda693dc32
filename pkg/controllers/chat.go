package controllers

import (
	"github.com/bookmate-ai/bookmate-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type ChatController struct {
	ChatModel *models.ChatModel
}

func NewChatController(cm *models.ChatModel) *ChatController {
	return &ChatController{
		ChatModel: cm,
	}
}

func (cc *ChatController) HandleGetBotResponse(c *fiber.Ctx) error {
	req := new(models.BotResponseReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	answer, err := cc.ChatModel.GetBotResponse(c.UserContext(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"response": answer,
	})
}

func (cc *ChatController) HandleUpdateMessage(c *fiber.Ctx) error {
	req := new(models.UpdateMessageReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	if err := cc.ChatModel.UpdateMessage(c.UserContext(), req); err != nil {
		return sendError(c, err)
	}
	// spelling is kept for existing clients
	return c.JSON(fiber.Map{
		"response": "Succesful",
	})
}

func (cc *ChatController) HandleUpdateTitle(c *fiber.Ctx) error {
	req := new(models.UpdateTitleReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	if _, err := cc.ChatModel.UpdateTitle(c.UserContext(), req); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"response": "Title updated",
	})
}
