package models

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/bookmate-ai/bookmate-server/pkg/services/catalog"
	"github.com/bookmate-ai/bookmate-server/pkg/services/objectstore"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAppConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &config.AppConfig{
		Logger: logger,
		Client: config.ClientInfo{
			ApiKey: "test-key",
			Secret: testSecret,
		},
		StorageInfo: config.StorageInfo{
			Driver:       config.StorageLocal,
			LinkValidity: time.Hour,
			Local: config.LocalStorage{
				Path:      t.TempDir(),
				PublicUrl: "http://localhost:5000",
			},
		},
		UploadFileSettings: config.UploadFileSettings{
			MaxSize:      1,
			AllowedTypes: []string{"pdf", "epub"},
		},
		AzureSpeech: config.AzureSpeech{
			Language: "en-US",
		},
		ChatSettings: config.ChatSettings{
			Model:            "chat-model",
			TitleModel:       "title-model",
			HistoryLimit:     3,
			MinSentenceChars: 5,
		},
	}
}

func newTestStorage(t *testing.T, app *config.AppConfig) *objectstore.LocalStorage {
	t.Helper()
	s, err := objectstore.NewLocalStorage(app.StorageInfo.Local, app.Client.ApiKey, app.Client.Secret)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func assertFiberCode(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fiber.Error with code %d, got %T: %v", code, err, err)
	}
	if fe.Code != code {
		t.Fatalf("expected code %d, got %d (%s)", code, fe.Code, fe.Message)
	}
}

// fakeChat answers every request with answer and records what it was asked.
type fakeChat struct {
	mu       sync.Mutex
	answer   string
	chunks   []string
	err      error
	requests [][]insights.ChatMessage
	models   []string
}

func (f *fakeChat) record(model string, messages []insights.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models = append(f.models, model)
	f.requests = append(f.requests, messages)
}

func (f *fakeChat) Complete(_ context.Context, model string, messages []insights.ChatMessage) (string, error) {
	f.record(model, messages)
	return f.answer, f.err
}

func (f *fakeChat) CompleteStream(_ context.Context, model string, messages []insights.ChatMessage) (<-chan insights.ChatChunk, error) {
	f.record(model, messages)
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan insights.ChatChunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- insights.ChatChunk{Text: c}
	}
	close(ch)
	return ch, nil
}

func (f *fakeChat) lastRequest() []insights.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakeLocker is an in-process stand-in for the redis upload lock.
type fakeLocker struct {
	mu    sync.Mutex
	held  map[string]string
	calls int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (l *fakeLocker) LockBookUpload(_ context.Context, userId, fileName string, _ time.Duration) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	key := userId + "/" + fileName
	if _, ok := l.held[key]; ok {
		return false, "", nil
	}
	l.held[key] = "v"
	return true, "v", nil
}

func (l *fakeLocker) UnlockBookUpload(_ context.Context, userId, fileName, lockValue string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := userId + "/" + fileName
	if l.held[key] == lockValue {
		delete(l.held, key)
	}
	return nil
}

type fakeCatalog struct {
	books   []catalog.Book
	err     error
	file    string
	content string
}

func (f *fakeCatalog) Search(context.Context, string, int) ([]catalog.Book, error) {
	return f.books, f.err
}

func (f *fakeCatalog) Download(context.Context, string) (*catalog.DownloadedFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	dir, err := os.MkdirTemp("", "fake-catalog-*")
	if err != nil {
		return nil, err
	}
	path := dir + "/" + f.file
	if err = os.WriteFile(path, []byte(f.content), 0644); err != nil {
		return nil, err
	}
	return &catalog.DownloadedFile{
		Path:     path,
		FileName: f.file,
		Size:     int64(len(f.content)),
	}, nil
}

func newTestBookModel(t *testing.T) (*BookModel, store.Store, *fakeLocker, *fakeCatalog) {
	t.Helper()
	app := newTestAppConfig(t)
	st := store.NewMemoryStore()
	locker := newFakeLocker()
	cs := &fakeCatalog{}
	return NewBookModel(app, st, newTestStorage(t, app), locker, cs, nil), st, locker, cs
}

const pdfContent = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func pdfReader() *strings.Reader {
	return strings.NewReader(pdfContent)
}
