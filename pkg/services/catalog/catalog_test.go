package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/sirupsen/logrus"
)

const searchPage = `<html><body>
<table class="c">
<tr><td>ID</td><td>Author</td><td>Title</td></tr>
<tr><td>1</td><td>Herbert</td><td><a href="book/index.php?md5=AAA">Dune <i>Book One</i></a></td></tr>
<tr><td>2</td><td>Nobody</td></tr>
<tr><td>3</td><td>Herbert</td><td><a>No link</a></td></tr>
<tr><td>4</td><td>Herbert</td><td><a href="book/index.php?md5=BBB">Dune Messiah</a></td></tr>
</table>
</body></html>`

const detailPage = `<html><body>
<a href="/other">Other mirror</a>
<a href="/mirror/AAA">Libgen &amp; IPFS &amp; Tor</a>
</body></html>`

const mirrorPage = `<html><body>
<div id="download"><h2><a href="/files/dune.epub">GET</a></h2></div>
</body></html>`

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) GetCatalogSearch(_ context.Context, query string, limit int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[fmt.Sprintf("%d:%s", limit, query)], nil
}

func (m *memCache) SetCatalogSearch(_ context.Context, query string, limit int, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[fmt.Sprintf("%d:%s", limit, query)] = data
	return nil
}

func newTestServer(t *testing.T, searches *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search.php", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(searches, 1)
		q := r.URL.Query()
		if q.Get("res") != "25" || q.Get("view") != "simple" || q.Get("column") != "def" {
			http.Error(w, "bad params", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, searchPage)
	})
	mux.HandleFunc("/book/index.php", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("md5") {
		case "AAA":
			_, _ = io.WriteString(w, detailPage)
		case "NOMIRROR":
			_, _ = io.WriteString(w, "<html><body><a href='/x'>nothing</a></body></html>")
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/mirror/AAA", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, mirrorPage)
	})
	mux.HandleFunc("/files/dune.epub", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="Dune - Frank Herbert.epub"`)
		_, _ = io.WriteString(w, "epub-content")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseUrl string, cache Cache) *Client {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(config.CatalogSettings{
		BaseUrl:        baseUrl,
		MirrorLinkText: "Libgen & IPFS & Tor",
		CacheTTL:       time.Minute,
		Timeout:        5 * time.Second,
		DownloadDir:    t.TempDir(),
	}, cache, logger)
}

func TestSearch(t *testing.T) {
	var searches int32
	srv := newTestServer(t, &searches)
	cache := &memCache{data: make(map[string][]byte)}
	c := newTestClient(t, srv.URL, cache)

	books, err := c.Search(context.Background(), "dune", 25)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d: %+v", len(books), books)
	}
	if books[0].Title != "Dune Book One" {
		t.Errorf("unexpected title %q", books[0].Title)
	}
	if books[0].Link != srv.URL+"/book/index.php?md5=AAA" {
		t.Errorf("unexpected link %q", books[0].Link)
	}

	// served from cache
	if _, err = c.Search(context.Background(), "dune", 25); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&searches); n != 1 {
		t.Errorf("expected a single upstream search, got %d", n)
	}
}

func TestSearch_SharedFetchOutlivesCanceledCaller(t *testing.T) {
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		_, _ = io.WriteString(w, searchPage)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Search(firstCtx, "dune", 25)
		firstErr <- err
	}()
	<-started

	type result struct {
		books []Book
		err   error
	}
	second := make(chan result, 1)
	go func() {
		books, err := c.Search(context.Background(), "dune", 25)
		second <- result{books, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the canceled caller to see context.Canceled, got %v", err)
	}

	close(release)
	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("second caller failed: %v", res.err)
		}
		if len(res.books) != 2 {
			t.Errorf("expected 2 books, got %d", len(res.books))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never returned")
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.Search(context.Background(), "dune", 25)

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusBadGateway {
		t.Errorf("unexpected status %d", upErr.StatusCode)
	}
}

func TestSearch_NoTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html><body>no results</body></html>")
	}))
	defer srv.Close()

	books, err := newTestClient(t, srv.URL, nil).Search(context.Background(), "zzz", 25)
	if err != nil {
		t.Fatal(err)
	}
	if books == nil || len(books) != 0 {
		t.Errorf("expected empty non nil list, got %#v", books)
	}
}

func TestDownload(t *testing.T) {
	var searches int32
	srv := newTestServer(t, &searches)
	c := newTestClient(t, srv.URL, nil)

	f, err := c.Download(context.Background(), srv.URL+"/book/index.php?md5=AAA")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Cleanup()

	if f.FileName != "Dune - Frank Herbert.epub" {
		t.Errorf("unexpected file name %q", f.FileName)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "epub-content" {
		t.Errorf("unexpected content %q", data)
	}

	f.Cleanup()
	if _, err = os.Stat(f.Path); !os.IsNotExist(err) {
		t.Error("expected file to be removed after cleanup")
	}
}

func TestDownload_Errors(t *testing.T) {
	var searches int32
	srv := newTestServer(t, &searches)
	c := newTestClient(t, srv.URL, nil)

	_, err := c.Download(context.Background(), srv.URL+"/book/index.php?md5=NOMIRROR")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Msg != "Mirror link 'Libgen & IPFS & Tor' not found." {
		t.Errorf("unexpected message %q", parseErr.Msg)
	}

	_, err = c.Download(context.Background(), srv.URL+"/book/index.php?md5=MISSING")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 UpstreamError, got %v", err)
	}
}
