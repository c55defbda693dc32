package dbmodels

import (
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
)

// Book is the metadata of an uploaded file. The file itself lives in the
// object store under "{user_id}/{file_name}".
type Book struct {
	ID         string    `gorm:"column:id;primaryKey;size:36"`
	UserID     string    `gorm:"column:user_id;NOT NULL;uniqueIndex:idx_user_file"`
	FileName   string    `gorm:"column:file_name;size:255;NOT NULL;uniqueIndex:idx_user_file"`
	Size       int64     `gorm:"column:size;NOT NULL"`
	Format     string    `gorm:"column:format;size:10;NOT NULL"`
	UploadDate time.Time `gorm:"column:upload_date;NOT NULL"`
}

func (m *Book) TableName() string {
	return config.FormatDBTable("uploaded_files")
}

// ObjectPath is where the file is kept in the object store.
func (m *Book) ObjectPath() string {
	return m.UserID + "/" + m.FileName
}
