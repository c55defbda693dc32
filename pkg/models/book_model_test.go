package models

import (
	"context"
	"strings"
	"testing"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/services/catalog"
	"github.com/gofiber/fiber/v2"
)

func TestBookModel_Upload(t *testing.T) {
	m, st, locker, _ := newTestBookModel(t)
	ctx := context.Background()
	userId, _ := st.CreateUser(ctx, "alice", "alice@example.com")

	res, err := m.UploadBook(ctx, userId, "dune.pdf", pdfReader(), int64(len(pdfContent)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "File uploaded successfully" || res.GcsPath != userId+"/dune.pdf" || res.FileId == "" {
		t.Errorf("unexpected response %+v", res)
	}
	if len(locker.held) != 0 {
		t.Error("upload lock must be released")
	}

	exists, err := m.storage.Exists(ctx, res.GcsPath)
	if err != nil || !exists {
		t.Fatalf("expected stored object, err=%v", err)
	}

	books, err := m.ListBooks(ctx, userId)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].FileFormat != "pdf" || books[0].FileSize != int64(len(pdfContent)) {
		t.Errorf("unexpected books %+v", books)
	}
}

func TestBookModel_UploadUpperCaseExtension(t *testing.T) {
	m, st, _, _ := newTestBookModel(t)
	ctx := context.Background()
	userId, _ := st.CreateUser(ctx, "alice", "alice@example.com")

	res, err := m.UploadBook(ctx, userId, "BOOK.PDF", pdfReader(), int64(len(pdfContent)))
	if err != nil {
		t.Fatal(err)
	}
	if res.GcsPath != userId+"/BOOK.PDF" {
		t.Errorf("object path must keep the file name, got %s", res.GcsPath)
	}

	books, err := m.ListBooks(ctx, userId)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].FileFormat != "pdf" {
		t.Errorf("expected format pdf, got %+v", books)
	}
}

func TestBookModel_UploadValidation(t *testing.T) {
	m, st, locker, _ := newTestBookModel(t)
	ctx := context.Background()
	userId, _ := st.CreateUser(ctx, "alice", "alice@example.com")

	if _, err := m.UploadBook(ctx, userId, "first.pdf", pdfReader(), int64(len(pdfContent))); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		fileName string
		content  string
		size     int64
		code     int
	}{
		{name: "wrong extension", fileName: "notes.txt", content: pdfContent, code: fiber.StatusBadRequest},
		{name: "no extension", fileName: "book", content: pdfContent, code: fiber.StatusBadRequest},
		{name: "content is not a book", fileName: "fake.pdf", content: "just some text", code: fiber.StatusUnsupportedMediaType},
		{name: "too large", fileName: "big.pdf", content: pdfContent, size: 2 * 1024 * 1024, code: fiber.StatusRequestEntityTooLarge},
		{name: "duplicate name", fileName: "first.pdf", content: pdfContent, code: fiber.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.size
			if size == 0 {
				size = int64(len(tt.content))
			}
			_, err := m.UploadBook(ctx, userId, tt.fileName, strings.NewReader(tt.content), size)
			assertFiberCode(t, err, tt.code)
		})
	}

	// another upload of the same name is in progress
	locker.held[userId+"/locked.pdf"] = "other"
	_, err := m.UploadBook(ctx, userId, "locked.pdf", pdfReader(), int64(len(pdfContent)))
	assertFiberCode(t, err, fiber.StatusConflict)
	if locker.held[userId+"/locked.pdf"] != "other" {
		t.Error("a lock held by someone else must not be released")
	}
}

func TestBookModel_DeleteAndLink(t *testing.T) {
	m, st, _, _ := newTestBookModel(t)
	ctx := context.Background()
	userId, _ := st.CreateUser(ctx, "alice", "alice@example.com")

	res, err := m.UploadBook(ctx, userId, "dune.pdf", pdfReader(), int64(len(pdfContent)))
	if err != nil {
		t.Fatal(err)
	}
	req := &BookReq{UserId: userId, FileId: res.FileId}

	link, err := m.GenerateLink(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(link, "http://localhost:5000/download/book/") {
		t.Errorf("unexpected link %s", link)
	}

	if err = m.DeleteBook(ctx, req); err != nil {
		t.Fatal(err)
	}
	err = m.DeleteBook(ctx, req)
	assertFiberCode(t, err, fiber.StatusNotFound)

	_, err = m.GenerateLink(ctx, req)
	assertFiberCode(t, err, fiber.StatusNotFound)
}

func TestBookModel_MissingInStorage(t *testing.T) {
	m, st, _, _ := newTestBookModel(t)
	ctx := context.Background()
	userId, _ := st.CreateUser(ctx, "alice", "alice@example.com")

	res, err := m.UploadBook(ctx, userId, "dune.pdf", pdfReader(), int64(len(pdfContent)))
	if err != nil {
		t.Fatal(err)
	}
	if err = m.storage.Delete(ctx, res.GcsPath); err != nil {
		t.Fatal(err)
	}

	err = m.DeleteBook(ctx, &BookReq{UserId: userId, FileId: res.FileId})
	assertFiberCode(t, err, fiber.StatusNotFound)
	if fe := err.(*fiber.Error); fe.Message != config.FileNotFoundInStorage {
		t.Errorf("unexpected message %q", fe.Message)
	}
}

func TestBookModel_Catalog(t *testing.T) {
	m, st, _, cs := newTestBookModel(t)
	ctx := context.Background()
	userId, _ := st.CreateUser(ctx, "alice", "alice@example.com")

	_, err := m.SearchCatalog(ctx, &CatalogSearchReq{BookName: "dune"})
	assertFiberCode(t, err, fiber.StatusBadRequest)

	_, err = m.SearchCatalog(ctx, &CatalogSearchReq{BookName: "dune", Number: 25})
	assertFiberCode(t, err, fiber.StatusNotFound)

	cs.books = []catalog.Book{{Title: "Dune", Link: "http://catalog/book/1"}}
	res, err := m.SearchCatalog(ctx, &CatalogSearchReq{BookName: "dune", Number: 25})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.Books[0].Title != "Dune" {
		t.Errorf("unexpected search result %+v", res)
	}

	cs.file = "Dune.pdf"
	cs.content = pdfContent
	uploaded, err := m.ImportFromCatalog(ctx, &CatalogImportReq{BookDetailUrl: "http://catalog/book/1", UserId: userId})
	if err != nil {
		t.Fatal(err)
	}
	if uploaded.GcsPath != userId+"/Dune.pdf" {
		t.Errorf("unexpected path %s", uploaded.GcsPath)
	}

	cs.err = &catalog.ParseError{Msg: "GET download link not found."}
	_, err = m.ImportFromCatalog(ctx, &CatalogImportReq{BookDetailUrl: "http://catalog/book/2", UserId: userId})
	assertFiberCode(t, err, fiber.StatusNotFound)

	cs.err = &catalog.UpstreamError{URL: "http://catalog", StatusCode: 502}
	_, err = m.SearchCatalog(ctx, &CatalogSearchReq{BookName: "dune", Number: 25})
	assertFiberCode(t, err, fiber.StatusServiceUnavailable)
}
