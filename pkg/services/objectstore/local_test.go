package objectstore

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(config.LocalStorage{
		Path:      t.TempDir(),
		PublicUrl: "http://localhost:5000/",
	}, "api-key", testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocalStorage_PutExistsDelete(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()
	path := "user1/dune.pdf"

	ok, err := s.Exists(ctx, path)
	if err != nil || ok {
		t.Fatalf("expected object to be absent, got %v %v", ok, err)
	}

	if err = s.Put(ctx, path, strings.NewReader("%PDF-1.4"), "application/pdf"); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Exists(ctx, path)
	if err != nil || !ok {
		t.Fatalf("expected object to exist, got %v %v", ok, err)
	}

	data, err := os.ReadFile(filepath.Join(s.root, "user1", "dune.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", data)
	}

	if err = s.Delete(ctx, path); err != nil {
		t.Fatal(err)
	}
	if err = s.Delete(ctx, path); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_PathStaysInRoot(t *testing.T) {
	s := newTestLocalStorage(t)

	file, err := s.FullPath("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(file, s.root) {
		t.Errorf("path escaped the storage root: %s", file)
	}

	if _, err = s.FullPath(".."); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestLocalStorage_SignedURL(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()
	path := "user1/dune.epub"

	if err := s.Put(ctx, path, strings.NewReader("epub"), "application/epub+zip"); err != nil {
		t.Fatal(err)
	}

	link, err := s.SignedURL(ctx, path, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	prefix := "http://localhost:5000/download/book/"
	if !strings.HasPrefix(link, prefix) {
		t.Fatalf("unexpected link %s", link)
	}

	token, err := url.PathUnescape(strings.TrimPrefix(link, prefix))
	if err != nil {
		t.Fatal(err)
	}
	file, err := s.VerifyToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if file != filepath.Join(s.root, "user1", "dune.epub") {
		t.Errorf("unexpected file %s", file)
	}
}

func TestLocalStorage_VerifyToken(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()
	_ = s.Put(ctx, "user1/a.pdf", strings.NewReader("a"), "application/pdf")

	expired, err := s.generateToken("user1/a.pdf", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.VerifyToken(expired); err == nil {
		t.Error("expected expired token to be rejected")
	}

	other := newTestLocalStorage(t)
	other.secret = []byte("fedcba9876543210fedcba9876543210")
	forged, err := other.generateToken("user1/a.pdf", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.VerifyToken(forged); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}

	missing, err := s.generateToken("user1/missing.pdf", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.VerifyToken(missing); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}

	if _, err = s.VerifyToken("garbage"); err == nil {
		t.Error("expected malformed token to be rejected")
	}
}
