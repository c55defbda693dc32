package models

import (
	"context"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/services/catalog"
	"github.com/bookmate-ai/bookmate-server/pkg/services/nats"
	"github.com/bookmate-ai/bookmate-server/pkg/services/objectstore"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/sirupsen/logrus"
)

// UploadLocker serializes uploads of the same file name for one user.
type UploadLocker interface {
	LockBookUpload(ctx context.Context, userId, fileName string, ttl time.Duration) (bool, string, error)
	UnlockBookUpload(ctx context.Context, userId, fileName, lockValue string) error
}

// CatalogService searches the external catalog and downloads books from it.
type CatalogService interface {
	Search(ctx context.Context, query string, n int) ([]catalog.Book, error)
	Download(ctx context.Context, detailUrl string) (*catalog.DownloadedFile, error)
}

type BookModel struct {
	app         *config.AppConfig
	store       store.Store
	storage     objectstore.Storage
	locker      UploadLocker
	catalog     CatalogService
	natsService *natsservice.NatsService
	logger      *logrus.Entry
}

type BookInfo struct {
	Id         string    `json:"_id"`
	FileName   string    `json:"file_name"`
	FileFormat string    `json:"file_format"`
	UploadDate time.Time `json:"upload_datefile"`
	FileSize   int64     `json:"file_size"`
}

type UploadedBookRes struct {
	Message string `json:"message"`
	FileId  string `json:"file_id"`
	GcsPath string `json:"gcs_path"`
}

func NewBookModel(app *config.AppConfig, st store.Store, storage objectstore.Storage, locker UploadLocker, cs CatalogService, ns *natsservice.NatsService) *BookModel {
	if app == nil {
		app = config.GetConfig()
	}
	if ns == nil {
		ns = natsservice.New(app)
	}

	return &BookModel{
		app:         app,
		store:       st,
		storage:     storage,
		locker:      locker,
		catalog:     cs,
		natsService: ns,
		logger:      app.Logger.WithField("model", "book"),
	}
}
