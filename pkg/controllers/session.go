package controllers

import (
	"github.com/bookmate-ai/bookmate-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type SessionController struct {
	SessionModel *models.SessionModel
}

func NewSessionController(sm *models.SessionModel) *SessionController {
	return &SessionController{
		SessionModel: sm,
	}
}

func (sc *SessionController) HandleCreateSession(c *fiber.Ctx) error {
	req := new(models.CreateSessionReq)
	if err := parseBody(c, req); err != nil {
		return sendError(c, err)
	}

	id, err := sc.SessionModel.CreateSession(c.UserContext(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"response": id,
	})
}

func (sc *SessionController) HandleGetAllSessions(c *fiber.Ctx) error {
	list, err := sc.SessionModel.ListSessions(c.UserContext(), c.Params("userId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"response": list,
	})
}

func (sc *SessionController) HandleSessionHistory(c *fiber.Ctx) error {
	list, err := sc.SessionModel.SessionHistory(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"response": list,
	})
}

func (sc *SessionController) HandleDeleteSession(c *fiber.Ctx) error {
	if err := sc.SessionModel.DeleteSession(c.UserContext(), c.Params("sessionId")); err != nil {
		return sendError(c, err)
	}
	return c.JSON(nil)
}
