package mongoservice

import (
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	CreatedAt time.Time          `bson:"created_at"`
}

type sessionDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"user_id"`
	Title      *string            `bson:"title"`
	CreatedAt  time.Time          `bson:"created_at"`
	LastActive time.Time          `bson:"last_active"`
}

func (d *sessionDoc) toModel() dbmodels.Session {
	return dbmodels.Session{
		ID:         d.ID.Hex(),
		UserID:     d.UserID.Hex(),
		Title:      d.Title,
		CreatedAt:  d.CreatedAt.UTC(),
		LastActive: d.LastActive.UTC(),
	}
}

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SessionID primitive.ObjectID `bson:"session_id"`
	Sender    string             `bson:"sender"`
	Message   string             `bson:"message"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (d *messageDoc) toModel() dbmodels.Message {
	return dbmodels.Message{
		ID:        d.ID.Hex(),
		SessionID: d.SessionID.Hex(),
		Sender:    d.Sender,
		Message:   d.Message,
		Timestamp: d.Timestamp.UTC(),
	}
}

type bookDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"user_id"`
	FileName   string             `bson:"file_name"`
	Size       int64              `bson:"size"`
	Format     string             `bson:"format"`
	UploadDate time.Time          `bson:"upload_date"`
}

func (d *bookDoc) toModel() dbmodels.Book {
	return dbmodels.Book{
		ID:         d.ID.Hex(),
		UserID:     d.UserID.Hex(),
		FileName:   d.FileName,
		Size:       d.Size,
		Format:     d.Format,
		UploadDate: d.UploadDate.UTC(),
	}
}
