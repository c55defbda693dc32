package dbservice

import (
	"errors"

	"github.com/bookmate-ai/bookmate-server/pkg/dbmodels"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DatabaseService is the SQL backed store.Store.
type DatabaseService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

var _ store.Store = (*DatabaseService)(nil)

func New(db *gorm.DB, logger *logrus.Logger) *DatabaseService {
	return &DatabaseService{
		db:     db,
		logger: logger.WithField("service", "database"),
	}
}

// AutoMigrate creates or updates the tables used by the service.
func (s *DatabaseService) AutoMigrate() error {
	return s.db.AutoMigrate(
		&dbmodels.User{},
		&dbmodels.Session{},
		&dbmodels.Message{},
		&dbmodels.Book{},
	)
}

func checkID(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return store.ErrInvalidID
		}
	}
	return nil
}

// newID returns a time ordered id, so rows inserted within the same
// timestamp still sort in insertion order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
