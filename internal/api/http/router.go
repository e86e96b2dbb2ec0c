package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/denemehub/denemehub/internal/auth"
	"github.com/denemehub/denemehub/internal/catalog"
	"github.com/denemehub/denemehub/internal/practice"
	"github.com/denemehub/denemehub/internal/rbac"
)

// Deps bundles everything the router mounts.
type Deps struct {
	AuthService   *auth.Service
	Tokens        *auth.TokenService
	AdminStore    auth.AdminStore
	Catalog       catalog.Store
	PracticeStore practice.Store
	Practice      *practice.Service
	Checker       *rbac.Checker
	CORSOrigins   []string
}

// NewRouter wires the full /api/v1 surface.
func NewRouter(d Deps) chi.Router {
	guard := rbac.NewGuard(d.Checker, ForbiddenHandler)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/register", RegisterHandler(d.AuthService))
		api.Post("/auth/login", LoginHandler(d.AuthService))
		api.Post("/auth/refresh", RefreshHandler(d.AuthService))

		api.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Tokens, Unauthorized))

			pr.Post("/auth/logout", LogoutHandler(d.AuthService))
			pr.Get("/auth/me", MeHandler(d.AuthService))

			// Catalog reads
			pr.With(guard.Require("catalog:view")).Get("/lessons", ListLessonsHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/lessons/{id}", GetLessonHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/exam-types", ListExamTypesHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/exam-types/{id}", GetExamTypeHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/subjects", ListSubjectsHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/subjects/{id}", GetSubjectHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/test-books", ListTestBooksHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/test-books/{id}", GetTestBookHandler(d.Catalog))
			pr.With(guard.Require("catalog:view")).Get("/test-books/{id}/subjects", ListBookSubjectsHandler(d.Catalog))

			// Practice tests and solving
			pr.With(guard.Require("catalog:view")).
				Get("/practice-tests", ListPracticeTestsHandler(d.PracticeStore, d.Checker))
			pr.With(guard.Require("catalog:view")).
				Get("/practice-tests/{id}", GetPracticeTestHandler(d.PracticeStore, d.Checker))
			pr.With(guard.Require("test:solve")).
				Post("/tests/{id}/solve", SolveHandler(d.Practice))
			pr.With(guard.Require("result:view-own")).
				Get("/my-results", MyResultsHandler(d.Practice))
			pr.With(guard.RequireAny("result:view-own", "result:view-all")).
				Get("/my-results/{id}", GetResultHandler(d.Practice, d.Checker))

			// Admin surface
			pr.Route("/admin", func(ar chi.Router) {
				ar.With(guard.Require("catalog:manage")).Post("/lessons", CreateLessonHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Put("/lessons/{id}", UpdateLessonHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Delete("/lessons/{id}", DeleteLessonHandler(d.Catalog))

				ar.With(guard.Require("catalog:manage")).Post("/exam-types", CreateExamTypeHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Put("/exam-types/{id}", UpdateExamTypeHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Delete("/exam-types/{id}", DeleteExamTypeHandler(d.Catalog))

				ar.With(guard.Require("catalog:manage")).Post("/subjects", CreateSubjectHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Put("/subjects/{id}", UpdateSubjectHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Delete("/subjects/{id}", DeleteSubjectHandler(d.Catalog))

				ar.With(guard.Require("catalog:manage")).Post("/test-books", CreateTestBookHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Put("/test-books/{id}", UpdateTestBookHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Delete("/test-books/{id}", DeleteTestBookHandler(d.Catalog))
				ar.With(guard.Require("catalog:manage")).Put("/test-books/{id}/subjects", SetBookSubjectsHandler(d.Catalog))

				ar.With(guard.Require("test:manage")).Post("/practice-tests", CreatePracticeTestHandler(d.PracticeStore))
				ar.With(guard.Require("test:manage")).Put("/practice-tests/{id}", UpdatePracticeTestHandler(d.PracticeStore))
				ar.With(guard.Require("test:manage")).Delete("/practice-tests/{id}", DeletePracticeTestHandler(d.PracticeStore))

				ar.With(guard.Require("users:list")).Get("/users", AdminListUsersHandler(d.AdminStore))
				ar.With(guard.Require("users:manage")).Post("/users/{id}/activate", AdminSetUserActiveHandler(d.AdminStore, true))
				ar.With(guard.Require("users:manage")).Post("/users/{id}/deactivate", AdminSetUserActiveHandler(d.AdminStore, false))
				ar.With(guard.Require("users:manage")).Delete("/users/{id}", AdminDeleteUserHandler(d.AdminStore))

				ar.With(guard.Require("users:manage")).Get("/roles", AdminListRolesHandler(d.AdminStore))
				ar.With(guard.Require("users:manage")).Post("/roles", AdminCreateRoleHandler(d.AdminStore))
				ar.With(guard.Require("users:manage")).Put("/roles/{id}", AdminUpdateRoleHandler(d.AdminStore))
				ar.With(guard.Require("users:manage")).Delete("/roles/{id}", AdminDeleteRoleHandler(d.AdminStore))
				ar.With(guard.Require("users:manage")).Post("/users/{id}/roles/{roleID}", AdminAssignRoleHandler(d.AdminStore))
				ar.With(guard.Require("users:manage")).Delete("/users/{id}/roles/{roleID}", AdminRemoveRoleHandler(d.AdminStore))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Fail(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		Fail(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
