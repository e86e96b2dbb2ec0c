package auth

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/denemehub/denemehub/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	tok, err := svc.IssueAccessToken("user-1", []string{"user", "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("sub = %q", claims.Subject)
	}
	if !reflect.DeepEqual(claims.Roles, []string{"user", "admin"}) {
		t.Fatalf("roles = %v", claims.Roles)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _ := NewTokenService("secret-a", time.Minute).IssueAccessToken("user-1", nil)
	if _, err := NewTokenService("secret-b", time.Minute).Parse(tok); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tok, _ := NewTokenService("secret", -time.Minute).IssueAccessToken("user-1", nil)
	if _, err := NewTokenService("secret", -time.Minute).Parse(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestJWTMiddleware(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	tok, _ := svc.IssueAccessToken("user-1", []string{"admin"})

	var gotSub string
	var gotRoles []string
	var gotCode string
	mw := JWTMiddleware(svc, func(w http.ResponseWriter, code, msg string) {
		gotCode = code
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRoles = rbac.RolesFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotSub != "user-1" || !reflect.DeepEqual(gotRoles, []string{"admin"}) {
		t.Fatalf("sub=%q roles=%v", gotSub, gotRoles)
	}

	req = httptest.NewRequest("GET", "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotCode != "UNAUTHORIZED" {
		t.Fatalf("missing header code = %q", gotCode)
	}

	expired, _ := NewTokenService("secret", -time.Minute).IssueAccessToken("user-1", nil)
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotCode != "TOKEN_EXPIRED" {
		t.Fatalf("expired code = %q", gotCode)
	}
}
