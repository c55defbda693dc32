package dbmodels

import (
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
)

// Session is one chat conversation of a user. Title stays nil until
// it has been generated from the first question.
type Session struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"session_id"`
	UserID     string    `gorm:"column:user_id;NOT NULL;index" json:"-"`
	Title      *string   `gorm:"column:title" json:"title"`
	CreatedAt  time.Time `gorm:"column:created_at;NOT NULL" json:"-"`
	LastActive time.Time `gorm:"column:last_active;NOT NULL;index" json:"last_active"`
}

func (m *Session) TableName() string {
	return config.FormatDBTable("sessions")
}
