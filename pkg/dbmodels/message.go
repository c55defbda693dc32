package dbmodels

import (
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
)

type Message struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	SessionID string    `gorm:"column:session_id;NOT NULL;index:idx_session_ts"`
	Sender    string    `gorm:"column:sender;size:20;NOT NULL"`
	Message   string    `gorm:"column:message;type:text;NOT NULL"`
	Timestamp time.Time `gorm:"column:timestamp;precision:6;NOT NULL;index:idx_session_ts"`
}

func (m *Message) TableName() string {
	return config.FormatDBTable("messages")
}
