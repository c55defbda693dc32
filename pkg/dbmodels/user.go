package dbmodels

import (
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
)

type User struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string    `gorm:"column:name;NOT NULL;index:idx_name_email" json:"name"`
	Email     string    `gorm:"column:email;NOT NULL;index:idx_name_email" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;NOT NULL" json:"created_at"`
}

func (m *User) TableName() string {
	return config.FormatDBTable("users")
}
