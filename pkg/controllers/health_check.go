package controllers

import (
	"context"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/gofiber/fiber/v2"
)

type HealthCheckController struct {
	app *config.AppConfig
}

func NewHealthCheckController(app *config.AppConfig) *HealthCheckController {
	return &HealthCheckController{
		app: app,
	}
}

func (hc *HealthCheckController) HandleHealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if hc.app.DB != nil {
		if db, err := hc.app.DB.DB(); err != nil || db.PingContext(ctx) != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("DB connection error")
		}
	}
	if hc.app.MongoDB != nil {
		if err := hc.app.MongoDB.Client().Ping(ctx, nil); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("MongoDB connection error")
		}
	}
	if hc.app.RDS != nil {
		if _, err := hc.app.RDS.Ping(ctx).Result(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Redis connection error")
		}
	}

	return c.Status(fiber.StatusOK).SendString("Healthy")
}
