package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testServer is a minimal platform double speaking the response envelope.
type testServer struct {
	mu           sync.Mutex
	validAccess  map[string]bool
	validRefresh map[string]bool
	refreshCalls int32
	logoutCalls  int32
	issued       int
}

func newTestServer() *testServer {
	return &testServer{
		validAccess:  map[string]bool{},
		validRefresh: map[string]bool{},
	}
}

func (s *testServer) issuePair() TokenPair {
	s.issued++
	pair := TokenPair{
		AccessToken:  "access-" + string(rune('a'+s.issued)),
		RefreshToken: "refresh-" + string(rune('a'+s.issued)),
	}
	s.validAccess[pair.AccessToken] = true
	s.validRefresh[pair.RefreshToken] = true
	return pair
}

func ok(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func fail(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": msg},
	})
}

func (s *testServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login request carried an Authorization header")
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "correct horse" {
			fail(w, 401, "INVALID_CREDENTIALS", "invalid credentials")
			return
		}
		s.mu.Lock()
		pair := s.issuePair()
		s.mu.Unlock()
		ok(w, map[string]any{
			"user":          map[string]any{"id": "u1", "email": in["email"]},
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
			"token_type":    "Bearer",
		})
	})

	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.refreshCalls, 1)
		if r.Header.Get("Authorization") != "" {
			t.Error("refresh request carried an Authorization header")
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.validRefresh[in["refresh_token"]] {
			fail(w, 401, "INVALID_REFRESH_TOKEN", "invalid refresh token")
			return
		}
		delete(s.validRefresh, in["refresh_token"])
		pair := s.issuePair()
		ok(w, map[string]any{
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
			"token_type":    "Bearer",
		})
	})

	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.logoutCalls, 1)
		ok(w, nil)
	})

	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		s.mu.Lock()
		valid := s.validAccess[token]
		s.mu.Unlock()
		if !valid {
			fail(w, 401, "TOKEN_EXPIRED", "token expired")
			return
		}
		ok(w, map[string]any{"id": "u1", "email": "ayse@example.com"})
	})

	return mux
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	return ""
}

func startPlatform(t *testing.T) (*testServer, *Client) {
	t.Helper()
	srv := newTestServer()
	ts := httptest.NewServer(srv.handler(t))
	t.Cleanup(ts.Close)
	return srv, New(ts.URL)
}

func login(t *testing.T, c *Client) {
	t.Helper()
	if _, err := c.Login(context.Background(), "ayse@example.com", "correct horse"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginStoresPairAndAuthenticates(t *testing.T) {
	_, c := startPlatform(t)
	login(t, c)

	pair, err := c.store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("pair incomplete after login")
	}
	if c.SessionState() != Authenticated {
		t.Fatalf("state = %v, want Authenticated", c.SessionState())
	}
}

func TestLoginFailureSurfacesAPIError(t *testing.T) {
	_, c := startPlatform(t)
	_, err := c.Login(context.Background(), "ayse@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != "INVALID_CREDENTIALS" || apiErr.Status != 401 {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if st := c.SessionState(); st != Anonymous {
		t.Fatalf("state = %v after failed login", st)
	}
}

func TestExpiredTokenIsRefreshedAndRetriedOnce(t *testing.T) {
	srv, c := startPlatform(t)
	login(t, c)

	// Invalidate the access token server-side: next /me returns 401.
	srv.mu.Lock()
	srv.validAccess = map[string]bool{}
	srv.mu.Unlock()

	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me after expiry: %v", err)
	}
	if u.Email != "ayse@example.com" {
		t.Fatalf("user = %+v", u)
	}
	if n := atomic.LoadInt32(&srv.refreshCalls); n != 1 {
		t.Fatalf("refresh calls = %d, want 1", n)
	}
}

func TestRefreshFailureClearsSession(t *testing.T) {
	srv, c := startPlatform(t)
	login(t, c)

	// Kill both tokens: refresh will be rejected too.
	srv.mu.Lock()
	srv.validAccess = map[string]bool{}
	srv.validRefresh = map[string]bool{}
	srv.mu.Unlock()

	states := c.Subscribe()
	_, err := c.Me(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_REFRESH_TOKEN" {
		t.Fatalf("err = %v, want refresh rejection", err)
	}

	pair, _ := c.store.Load()
	if !pair.Empty() {
		t.Fatal("credential store not cleared after refresh failure")
	}
	if c.SessionState() != LoggedOut {
		t.Fatalf("state = %v, want LoggedOut", c.SessionState())
	}
	select {
	case st := <-states:
		if st != LoggedOut {
			t.Fatalf("notified state = %v", st)
		}
	case <-time.After(time.Second):
		t.Fatal("no state notification")
	}
}

func TestRefreshTransportFailureClearsSession(t *testing.T) {
	// The refresh call dies on the wire instead of answering. The session
	// must still end: pair cleared, LoggedOut, error propagated.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		fail(w, 401, "TOKEN_EXPIRED", "token expired")
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL)
	c.store.Save(TokenPair{AccessToken: "stale", RefreshToken: "r1"})

	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected a refresh failure")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want a transport error, not an envelope error", err)
	}
	pair, _ := c.store.Load()
	if !pair.Empty() {
		t.Fatalf("credential pair not cleared after refresh failure: %+v", pair)
	}
	if c.SessionState() != LoggedOut {
		t.Fatalf("state = %v, want LoggedOut", c.SessionState())
	}
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	srv, c := startPlatform(t)
	login(t, c)

	srv.mu.Lock()
	srv.validAccess = map[string]bool{}
	srv.mu.Unlock()

	// The refresh endpoint rotates: a second concurrent refresh with the
	// same token would fail, so every 401 must ride the same call.
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if calls := atomic.LoadInt32(&srv.refreshCalls); calls != 1 {
		t.Fatalf("refresh calls = %d, want 1", calls)
	}
}

func TestUnauthenticatedEndpointsNeverTriggerRefresh(t *testing.T) {
	srv, c := startPlatform(t)
	login(t, c)

	// A failed login must return its own 401, not start a refresh.
	if _, err := c.Login(context.Background(), "ayse@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	if n := atomic.LoadInt32(&srv.refreshCalls); n != 0 {
		t.Fatalf("refresh calls = %d after failed login", n)
	}
}

func TestRequestWithoutTokensFailsWithoutRefresh(t *testing.T) {
	srv, c := startPlatform(t)

	_, err := c.Me(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if n := atomic.LoadInt32(&srv.refreshCalls); n != 0 {
		t.Fatalf("refresh calls = %d for anonymous request", n)
	}
}

func TestLogoutWithoutTokensSkipsNetwork(t *testing.T) {
	srv, c := startPlatform(t)

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if n := atomic.LoadInt32(&srv.logoutCalls); n != 0 {
		t.Fatalf("logout calls = %d, want 0", n)
	}
	if c.SessionState() != LoggedOut {
		t.Fatalf("state = %v, want LoggedOut", c.SessionState())
	}
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fail(w, 500, "INTERNAL_ERROR", "boom")
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.store.Save(TokenPair{AccessToken: "a", RefreshToken: "r"})

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	pair, _ := c.store.Load()
	if !pair.Empty() {
		t.Fatal("store not cleared")
	}
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileTokenStore(path)

	if pair, err := store.Load(); err != nil || !pair.Empty() {
		t.Fatalf("fresh load = %+v, %v", pair, err)
	}
	want := TokenPair{AccessToken: "a", RefreshToken: "r"}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load()
	if err != nil || got != want {
		t.Fatalf("load = %+v, %v", got, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if pair, _ := store.Load(); !pair.Empty() {
		t.Fatal("clear left tokens behind")
	}
}

func TestFileTokenStoreResumesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	first := NewFileTokenStore(path)
	first.Save(TokenPair{AccessToken: "a", RefreshToken: "r"})

	c := New("http://unused.invalid", WithTokenStore(NewFileTokenStore(path)))
	if c.SessionState() != Authenticated {
		t.Fatalf("state = %v, want Authenticated from persisted pair", c.SessionState())
	}
}
