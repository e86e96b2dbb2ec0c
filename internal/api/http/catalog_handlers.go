package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/denemehub/denemehub/internal/catalog"
)

// ---- lessons ----

func ListLessonsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListLessons(r.Context())
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, out)
	}
}

func GetLessonHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := store.GetLesson(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, l)
	}
}

func CreateLessonHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.Name == "" {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
			return
		}
		l := catalog.Lesson{ID: uuid.NewString(), Name: req.Name, CreatedAt: time.Now().UTC()}
		if err := store.CreateLesson(r.Context(), l); err != nil {
			FailErr(w, err)
			return
		}
		Created(w, l, "lesson created")
	}
}

func UpdateLessonHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		if err := store.UpdateLesson(r.Context(), catalog.Lesson{ID: id, Name: req.Name}); err != nil {
			FailErr(w, err)
			return
		}
		l, err := store.GetLesson(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, l, "lesson updated")
	}
}

func DeleteLessonHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteLesson(r.Context(), chi.URLParam(r, "id")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "lesson deleted")
	}
}

// ---- exam types ----

func ListExamTypesHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListExamTypes(r.Context())
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, out)
	}
}

func GetExamTypeHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.GetExamType(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, e)
	}
}

func CreateExamTypeHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.Name == "" {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
			return
		}
		e := catalog.ExamType{
			ID: uuid.NewString(), Name: req.Name, Description: req.Description,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateExamType(r.Context(), e); err != nil {
			FailErr(w, err)
			return
		}
		Created(w, e, "exam type created")
	}
}

func UpdateExamTypeHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		e := catalog.ExamType{ID: id, Name: req.Name, Description: req.Description}
		if err := store.UpdateExamType(r.Context(), e); err != nil {
			FailErr(w, err)
			return
		}
		out, err := store.GetExamType(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, out, "exam type updated")
	}
}

func DeleteExamTypeHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteExamType(r.Context(), chi.URLParam(r, "id")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "exam type deleted")
	}
}

// ---- subjects ----

func ListSubjectsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListSubjects(r.Context())
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, out)
	}
}

func GetSubjectHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := store.GetSubject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, s)
	}
}

func CreateSubjectHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name       string `json:"name"`
			LessonID   string `json:"lesson_id"`
			ExamTypeID string `json:"exam_type_id"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.Name == "" || req.LessonID == "" || req.ExamTypeID == "" {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "name, lesson_id and exam_type_id are required")
			return
		}
		s := catalog.Subject{
			ID: uuid.NewString(), Name: req.Name,
			LessonID: req.LessonID, ExamTypeID: req.ExamTypeID,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateSubject(r.Context(), s); err != nil {
			FailErr(w, err)
			return
		}
		Created(w, s, "subject created")
	}
}

func UpdateSubjectHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name       string `json:"name"`
			LessonID   string `json:"lesson_id"`
			ExamTypeID string `json:"exam_type_id"`
		}
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		s := catalog.Subject{ID: id, Name: req.Name, LessonID: req.LessonID, ExamTypeID: req.ExamTypeID}
		if err := store.UpdateSubject(r.Context(), s); err != nil {
			FailErr(w, err)
			return
		}
		out, err := store.GetSubject(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, out, "subject updated")
	}
}

func DeleteSubjectHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteSubject(r.Context(), chi.URLParam(r, "id")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "subject deleted")
	}
}

// ---- test books ----

func ListTestBooksHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListTestBooks(r.Context(), r.URL.Query().Get("subject_id"))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, out)
	}
}

func GetTestBookHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := store.GetTestBook(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, b)
	}
}

func CreateTestBookHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name          string `json:"name"`
			LessonID      string `json:"lesson_id"`
			ExamTypeID    string `json:"exam_type_id"`
			SubjectID     string `json:"subject_id"`
			PublishedYear int    `json:"published_year"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.Name == "" || req.LessonID == "" || req.ExamTypeID == "" || req.SubjectID == "" {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"name, lesson_id, exam_type_id and subject_id are required")
			return
		}
		b := catalog.TestBook{
			ID: uuid.NewString(), Name: req.Name,
			LessonID: req.LessonID, ExamTypeID: req.ExamTypeID, SubjectID: req.SubjectID,
			PublishedYear: req.PublishedYear, CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateTestBook(r.Context(), b); err != nil {
			FailErr(w, err)
			return
		}
		Created(w, b, "test book created")
	}
}

func UpdateTestBookHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name          string `json:"name"`
			LessonID      string `json:"lesson_id"`
			ExamTypeID    string `json:"exam_type_id"`
			SubjectID     string `json:"subject_id"`
			PublishedYear int    `json:"published_year"`
		}
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		b := catalog.TestBook{
			ID: id, Name: req.Name,
			LessonID: req.LessonID, ExamTypeID: req.ExamTypeID, SubjectID: req.SubjectID,
			PublishedYear: req.PublishedYear,
		}
		if err := store.UpdateTestBook(r.Context(), b); err != nil {
			FailErr(w, err)
			return
		}
		out, err := store.GetTestBook(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, out, "test book updated")
	}
}

func DeleteTestBookHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteTestBook(r.Context(), chi.URLParam(r, "id")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "test book deleted")
	}
}

func ListBookSubjectsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.GetTestBook(r.Context(), id); err != nil {
			FailErr(w, err)
			return
		}
		out, err := store.ListBookSubjects(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, out)
	}
}

func SetBookSubjectsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SubjectIDs []string `json:"subject_ids"`
		}
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		if _, err := store.GetTestBook(r.Context(), id); err != nil {
			FailErr(w, err)
			return
		}
		if err := store.SetBookSubjects(r.Context(), id, req.SubjectIDs); err != nil {
			FailErr(w, err)
			return
		}
		out, err := store.ListBookSubjects(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, out, "test book subjects updated")
	}
}
