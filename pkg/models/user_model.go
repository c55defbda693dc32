package models

import (
	"context"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type UserModel struct {
	store  store.Store
	logger *logrus.Entry
}

type UserReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserModel(st store.Store, logger *logrus.Logger) *UserModel {
	return &UserModel{
		store:  st,
		logger: logger.WithField("model", "user"),
	}
}

func (r *UserReq) validate() error {
	if r.Username == "" || r.Email == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "username and email are required")
	}
	return nil
}

func (m *UserModel) CreateUser(ctx context.Context, req *UserReq) error {
	if err := req.validate(); err != nil {
		return err
	}

	id, err := m.store.CreateUser(ctx, req.Username, req.Email)
	if err != nil {
		m.logger.WithError(err).Errorln("failed to create user")
		return err
	}
	m.logger.WithField("userId", id).Infoln("user created")
	return nil
}

func (m *UserModel) GetUserId(ctx context.Context, req *UserReq) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	id, err := m.store.FindUserID(ctx, req.Username, req.Email)
	if err != nil {
		return "", storeError(err, config.UserNotFound)
	}
	return id, nil
}
