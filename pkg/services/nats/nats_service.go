package natsservice

import (
	"fmt"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NatsService publishes transcription, chat and library events. Without a
// NATS connection every publish is a no-op.
type NatsService struct {
	nc       *nats.Conn
	subjects config.NatsSubjects
	logger   *logrus.Entry
}

func New(app *config.AppConfig) *NatsService {
	if app == nil {
		app = config.GetConfig()
	}

	return &NatsService{
		nc:       app.NatsConn,
		subjects: app.NatsInfo.Subjects,
		logger:   app.Logger.WithField("service", "nats"),
	}
}

// Event is the payload of every published message.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func (s *NatsService) publish(subject, eventType string, data interface{}) error {
	if s.nc == nil {
		return nil
	}

	marshal, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	if err = s.nc.Publish(subject, marshal); err != nil {
		s.logger.WithError(err).WithField("subject", subject).Errorln("failed to publish event")
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}
