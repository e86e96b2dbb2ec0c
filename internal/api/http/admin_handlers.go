package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/denemehub/denemehub/internal/auth"
)

func AdminListUsersHandler(store auth.AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))
		users, total, err := store.ListUsers(r.Context(), page, perPage)
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, map[string]any{
			"users": users,
			"total": total,
		})
	}
}

func AdminSetUserActiveHandler(store auth.AdminStore, active bool) http.HandlerFunc {
	msg := "user deactivated"
	if active {
		msg = "user activated"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.SetUserActive(r.Context(), chi.URLParam(r, "id"), active); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, msg)
	}
}

func AdminDeleteUserHandler(store auth.AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.SoftDeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "user deleted")
	}
}

func AdminListRolesHandler(store auth.AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := store.ListRoles(r.Context())
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, roles)
	}
}

func AdminCreateRoleHandler(store auth.AdminStore) http.HandlerFunc {
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
		role := auth.Role{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.CreateRole(r.Context(), role); err != nil {
			FailErr(w, err)
			return
		}
		Created(w, role, "role created")
	}
}

func AdminUpdateRoleHandler(store auth.AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		if err := store.UpdateRole(r.Context(), auth.Role{ID: id, Name: req.Name, Description: req.Description}); err != nil {
			FailErr(w, err)
			return
		}
		role, err := store.GetRole(r.Context(), id)
		if err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, role, "role updated")
	}
}

func AdminDeleteRoleHandler(store auth.AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "role deleted")
	}
}

func AdminAssignRoleHandler(store auth.AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.AssignRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "roleID")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "role assigned")
	}
}

func AdminRemoveRoleHandler(store auth.AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.RemoveRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "roleID")); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "role removed")
	}
}
