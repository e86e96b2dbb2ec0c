package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/denemehub/denemehub/internal/catalog"
)

type fakeCatalogStore struct {
	catalog.Store
	lastSubject string
	books       []catalog.TestBook
}

func (f *fakeCatalogStore) ListTestBooks(ctx context.Context, subjectID string) ([]catalog.TestBook, error) {
	f.lastSubject = subjectID
	if subjectID == "" {
		return f.books, nil
	}
	var out []catalog.TestBook
	for _, b := range f.books {
		if b.SubjectID == subjectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func TestListTestBooksFiltersBySubject(t *testing.T) {
	store := &fakeCatalogStore{books: []catalog.TestBook{
		{ID: "book-1", Name: "TYT Matematik", SubjectID: "subject-1"},
		{ID: "book-2", Name: "AYT Fizik", SubjectID: "subject-2"},
	}}
	h := ListTestBooksHandler(store)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/test-books?subject_id=subject-2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.lastSubject != "subject-2" {
		t.Fatalf("subject filter = %q, want subject-2", store.lastSubject)
	}
	var body struct {
		Success bool               `json:"success"`
		Data    []catalog.TestBook `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != "book-2" {
		t.Fatalf("books = %+v, want only book-2", body.Data)
	}
}

func TestListTestBooksWithoutFilterReturnsAll(t *testing.T) {
	store := &fakeCatalogStore{books: []catalog.TestBook{
		{ID: "book-1", SubjectID: "subject-1"},
		{ID: "book-2", SubjectID: "subject-2"},
	}}
	h := ListTestBooksHandler(store)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/test-books", nil))

	if store.lastSubject != "" {
		t.Fatalf("subject filter = %q, want empty", store.lastSubject)
	}
	var body struct {
		Data []catalog.TestBook `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("books = %d, want 2", len(body.Data))
	}
}
