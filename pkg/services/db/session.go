package dbservice

import (
	"context"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"gorm.io/gorm"
)

func (s *DatabaseService) CreateSession(ctx context.Context, userID string) (string, error) {
	if err := checkID(userID); err != nil {
		return "", err
	}
	now := time.Now().UTC()
	info := &dbmodels.Session{
		ID:         newID(),
		UserID:     userID,
		CreatedAt:  now,
		LastActive: now,
	}

	result := s.db.WithContext(ctx).Create(info)
	if result.Error != nil {
		return "", result.Error
	}
	return info.ID, nil
}

func (s *DatabaseService) GetSession(ctx context.Context, sessionID string) (*dbmodels.Session, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	info := new(dbmodels.Session)

	result := s.db.WithContext(ctx).Where("id = ?", sessionID).Take(info)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return info, nil
}

func (s *DatabaseService) UpdateSessionTitle(ctx context.Context, sessionID, title string) error {
	return s.updateSession(ctx, sessionID, map[string]interface{}{
		"title": title,
	})
}

func (s *DatabaseService) TouchSession(ctx context.Context, sessionID string) error {
	return s.updateSession(ctx, sessionID, map[string]interface{}{
		"last_active": time.Now().UTC(),
	})
}

func (s *DatabaseService) updateSession(ctx context.Context, sessionID string, update map[string]interface{}) error {
	if err := checkID(sessionID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&dbmodels.Session{}).Where("id = ?", sessionID).Updates(update)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// mysql reports 0 affected rows when nothing changed
		var count int64
		s.db.WithContext(ctx).Model(&dbmodels.Session{}).Where("id = ?", sessionID).Count(&count)
		if count == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}

func (s *DatabaseService) ListSessions(ctx context.Context, userID string) ([]dbmodels.Session, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	var sessions []dbmodels.Session
	cond := &dbmodels.Session{
		UserID: userID,
	}

	result := s.db.WithContext(ctx).Where(cond).Order("last_active DESC").Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}
	return sessions, nil
}

func (s *DatabaseService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&dbmodels.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", sessionID).Delete(&dbmodels.Session{}).Error
	})
}
