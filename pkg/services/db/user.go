package dbservice

import (
	"context"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
)

func (s *DatabaseService) CreateUser(ctx context.Context, name, email string) (string, error) {
	info := &dbmodels.User{
		ID:        newID(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	result := s.db.WithContext(ctx).Create(info)
	if result.Error != nil {
		return "", result.Error
	}
	return info.ID, nil
}

func (s *DatabaseService) FindUserID(ctx context.Context, name, email string) (string, error) {
	info := new(dbmodels.User)
	cond := &dbmodels.User{
		Name:  name,
		Email: email,
	}

	result := s.db.WithContext(ctx).Where(cond).Order("created_at ASC").Take(info)
	if result.Error != nil {
		return "", notFound(result.Error)
	}
	return info.ID, nil
}
