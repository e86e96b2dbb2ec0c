package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SystemRoles are created at startup and cannot be edited through the API.
var SystemRoles = []string{"user", "admin", "super_admin"}

// Bootstrap ensures the system roles exist and, when adminPassword is set,
// an active admin account. Safe to run on every start.
func Bootstrap(ctx context.Context, store interface {
	Store
	AdminStore
}, adminUsername, adminEmail, adminPassword string) error {
	roleIDs := map[string]string{}
	existing, err := store.ListRoles(ctx)
	if err != nil {
		return err
	}
	for _, r := range existing {
		roleIDs[r.Name] = r.ID
	}
	for _, name := range SystemRoles {
		if _, ok := roleIDs[name]; ok {
			continue
		}
		r := Role{ID: uuid.NewString(), Name: name, IsSystem: true, CreatedAt: time.Now().UTC()}
		if err := store.CreateRole(ctx, r); err != nil {
			return err
		}
		roleIDs[name] = r.ID
	}

	if adminPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(adminEmail))
	if ok, err := store.EmailExists(ctx, email); err != nil || ok {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u := User{
		ID:           uuid.NewString(),
		Username:     adminUsername,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, u); err != nil {
		return err
	}
	return store.AssignRole(ctx, u.ID, roleIDs["admin"])
}
