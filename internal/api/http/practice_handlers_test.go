package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/denemehub/denemehub/internal/auth"
	"github.com/denemehub/denemehub/internal/practice"
)

type fakePracticeStore struct {
	practice.Store
	test  practice.PracticeTest
	saved *practice.TestResult
}

func (f *fakePracticeStore) GetTest(ctx context.Context, id string) (practice.PracticeTest, error) {
	if id != f.test.ID {
		return practice.PracticeTest{}, practice.ErrTestNotFound
	}
	return f.test, nil
}

func (f *fakePracticeStore) LatestResult(ctx context.Context, userID, testID string) (practice.TestResult, error) {
	return practice.TestResult{}, practice.ErrResultNotFound
}

func (f *fakePracticeStore) CreateResult(ctx context.Context, r practice.TestResult) error {
	f.saved = &r
	return nil
}

func solveRouter(store *fakePracticeStore) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/tests/{id}/solve", SolveHandler(practice.NewService(store)))
	return r
}

func newSolveTest(t *testing.T, key string) practice.PracticeTest {
	t.Helper()
	pt, err := practice.NewTest("Deneme 1", 1, len(key), key, "book-1", "subject-1")
	if err != nil {
		t.Fatalf("NewTest: %v", err)
	}
	return pt
}

func TestSolveAcceptsAllBlankAnswers(t *testing.T) {
	store := &fakePracticeStore{test: newSolveTest(t, "ABCDE")}
	router := solveRouter(store)

	body := strings.NewReader(`{"answers":"     "}`)
	req := httptest.NewRequest(http.MethodPost, "/tests/"+store.test.ID+"/solve", body)
	req = req.WithContext(auth.WithSubject(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Data practice.SolveOutcome `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res := out.Data.Result
	if res.EmptyCount != 5 || res.CorrectCount != 0 || res.WrongCount != 0 {
		t.Fatalf("counts = %d/%d/%d, want 0 correct, 0 wrong, 5 empty",
			res.CorrectCount, res.WrongCount, res.EmptyCount)
	}
	if store.saved == nil {
		t.Fatal("result was not persisted")
	}
}

func TestSolveRejectsMissingAnswers(t *testing.T) {
	store := &fakePracticeStore{test: newSolveTest(t, "ABCDE")}
	router := solveRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/tests/"+store.test.ID+"/solve",
		strings.NewReader(`{"answers":""}`))
	req = req.WithContext(auth.WithSubject(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("code = %q, want VALIDATION_ERROR", out.Error.Code)
	}
}
