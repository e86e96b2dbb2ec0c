package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/denemehub/denemehub/internal/auth"
	"github.com/denemehub/denemehub/internal/practice"
	"github.com/denemehub/denemehub/internal/rbac"
)

// ListPracticeTestsHandler lists tests, optionally filtered by test book.
// The answer key is only included for callers allowed to manage tests.
func ListPracticeTestsHandler(store practice.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := store.ListTests(r.Context(), r.URL.Query().Get("test_book_id"))
		if err != nil {
			FailErr(w, err)
			return
		}
		if !checker.Has(rbac.RolesFromContext(r.Context()), "test:manage") {
			for i := range tests {
				tests[i].AnswerKey = ""
			}
		}
		OK(w, tests)
	}
}

func GetPracticeTestHandler(store practice.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			FailErr(w, err)
			return
		}
		if !checker.Has(rbac.RolesFromContext(r.Context()), "test:manage") {
			t.AnswerKey = ""
		}
		OK(w, t)
	}
}

type practiceTestRequest struct {
	Name          string `json:"name"`
	TestNumber    int    `json:"test_number"`
	QuestionCount int    `json:"question_count"`
	AnswerKey     string `json:"answer_key"`
	TestBookID    string `json:"test_book_id"`
	SubjectID     string `json:"subject_id"`
}

func CreatePracticeTestHandler(store practice.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req practiceTestRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Name == "" || req.TestBookID == "" || req.SubjectID == "" {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "name, test_book_id and subject_id are required")
			return
		}
		t, err := practice.NewTest(req.Name, req.TestNumber, req.QuestionCount, req.AnswerKey, req.TestBookID, req.SubjectID)
		if err != nil {
			FailErr(w, err)
			return
		}
		if err := store.CreateTest(r.Context(), t); err != nil {
			FailErr(w, err)
			return
		}
		Created(w, t, "practice test created")
	}
}

func UpdatePracticeTestHandler(store practice.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req practiceTestRequest
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		existing, err := store.GetTest(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		t, err := practice.NewTest(req.Name, req.TestNumber, req.QuestionCount, req.AnswerKey, req.TestBookID, req.SubjectID)
		if err != nil {
			FailErr(w, err)
			return
		}
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
		if err := store.UpdateTest(r.Context(), t); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, t, "practice test updated")
	}
}

func DeletePracticeTestHandler(store practice.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteTest(r.Context(), chi.URLParam(r, "id")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "practice test deleted")
	}
}

// SolveHandler scores a submission for the authenticated user.
func SolveHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers string `json:"answers"`
		}
		if !decode(w, r, &req) {
			return
		}
		// An all-blank sheet is a legal submission: every position scores
		// empty. Only a missing string is rejected.
		if req.Answers == "" {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "answers is required")
			return
		}
		userID := auth.SubjectFromContext(r.Context())
		out, err := svc.Solve(r.Context(), userID, chi.URLParam(r, "id"), req.Answers)
		if err != nil {
			FailErr(w, err)
			return
		}
		Created(w, out, "test solved")
	}
}

// MyResultsHandler pages through the caller's own results, newest first.
func MyResultsHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))
		results, total, err := svc.UserResults(r.Context(), userID, q.Get("test_id"), page, perPage)
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, map[string]any{
			"results": results,
			"total":   total,
		})
	}
}

// GetResultHandler returns one result. Non-admins can only read their own.
func GetResultHandler(svc *practice.Service, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		viewAll := checker.Has(rbac.RolesFromContext(r.Context()), "result:view-all")
		res, err := svc.Result(r.Context(), chi.URLParam(r, "id"), userID, viewAll)
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, res)
	}
}
