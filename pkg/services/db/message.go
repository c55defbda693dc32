package dbservice

import (
	"context"
	"slices"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"gorm.io/gorm"
)

func (s *DatabaseService) AddMessage(ctx context.Context, sessionID, sender, text string) (*dbmodels.Message, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	info := &dbmodels.Message{
		ID:        newID(),
		SessionID: sessionID,
		Sender:    sender,
		Message:   text,
		Timestamp: time.Now().UTC(),
	}

	result := s.db.WithContext(ctx).Create(info)
	if result.Error != nil {
		return nil, result.Error
	}
	return info, nil
}

func (s *DatabaseService) History(ctx context.Context, sessionID string, limit int) ([]dbmodels.Message, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	var messages []dbmodels.Message
	cond := &dbmodels.Message{
		SessionID: sessionID,
	}

	if limit <= 0 {
		result := s.db.WithContext(ctx).Where(cond).Order("timestamp ASC, id ASC").Find(&messages)
		return messages, result.Error
	}

	result := s.db.WithContext(ctx).Where(cond).Order("timestamp DESC, id DESC").Limit(limit).Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	slices.Reverse(messages)
	return messages, nil
}

func (s *DatabaseService) FirstMessage(ctx context.Context, sessionID string) (*dbmodels.Message, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	info := new(dbmodels.Message)

	result := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("timestamp ASC, id ASC").Take(info)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return info, nil
}

func (s *DatabaseService) TruncateFrom(ctx context.Context, sessionID, messageID, newText string) error {
	if err := checkID(sessionID, messageID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info := new(dbmodels.Message)
		result := tx.Where("id = ? AND session_id = ?", messageID, sessionID).Take(info)
		if result.Error != nil {
			return notFound(result.Error)
		}

		err := tx.Where("session_id = ?", sessionID).
			Where("timestamp > ? OR (timestamp = ? AND id > ?)", info.Timestamp, info.Timestamp, info.ID).
			Delete(&dbmodels.Message{}).Error
		if err != nil {
			return err
		}

		return tx.Model(info).Update("message", newText).Error
	})
}
