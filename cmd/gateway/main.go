package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/denemehub/denemehub/internal/api/http"
	"github.com/denemehub/denemehub/internal/auth"
	"github.com/denemehub/denemehub/internal/catalog"
	"github.com/denemehub/denemehub/internal/config"
	"github.com/denemehub/denemehub/internal/db"
	"github.com/denemehub/denemehub/internal/practice"
	"github.com/denemehub/denemehub/internal/rbac"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	authStore := auth.NewSQLStore(dbh)
	if err := auth.Bootstrap(ctx, authStore, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)
	authSvc := auth.NewService(authStore, tokens, cfg.RefreshTokenTTL)
	practiceStore := practice.NewSQLStore(dbh)

	r := api.NewRouter(api.Deps{
		AuthService:   authSvc,
		Tokens:        tokens,
		AdminStore:    authStore,
		Catalog:       catalog.NewSQLStore(dbh),
		PracticeStore: practiceStore,
		Practice:      practice.NewService(practiceStore),
		Checker:       rbac.NewChecker(nil),
		CORSOrigins:   cfg.CORSOrigins,
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
