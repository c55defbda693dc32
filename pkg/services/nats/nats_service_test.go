package natsservice

import (
	"os"
	"testing"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

func testSubjects() config.NatsSubjects {
	return config.NatsSubjects{
		Transcription: "test.transcription",
		Chat:          "test.chat",
		Library:       "test.library",
	}
}

func TestNatsService_NoConnection(t *testing.T) {
	s := New(&config.AppConfig{
		Logger:   logrus.New(),
		NatsInfo: config.NatsInfo{Subjects: testSubjects()},
	})

	if err := s.PublishTranscription("conn", "en-US", "hello"); err != nil {
		t.Errorf("publish without connection should be a no-op, got %v", err)
	}
	if err := s.PublishBookAdded("u1", "f1", "dune.pdf"); err != nil {
		t.Errorf("publish without connection should be a no-op, got %v", err)
	}
}

func TestNatsService_Publish(t *testing.T) {
	url := os.Getenv("BOOKMATE_TEST_NATS_URL")
	if url == "" {
		t.Skip("Skipping NATS integration test - BOOKMATE_TEST_NATS_URL not set")
	}

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync("test.library.>")
	if err != nil {
		t.Fatal(err)
	}

	s := New(&config.AppConfig{
		Logger:   logrus.New(),
		NatsConn: nc,
		NatsInfo: config.NatsInfo{Subjects: testSubjects()},
	})
	if err = s.PublishBookAdded("u1", "f1", "dune.pdf"); err != nil {
		t.Fatal(err)
	}

	msg, err := sub.NextMsg(2 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "test.library.u1" {
		t.Errorf("unexpected subject %s", msg.Subject)
	}

	var ev struct {
		Type string    `json:"type"`
		Data BookEvent `json:"data"`
	}
	if err = json.Unmarshal(msg.Data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventBookAdded || ev.Data.FileName != "dune.pdf" {
		t.Errorf("unexpected event %+v", ev)
	}
}
