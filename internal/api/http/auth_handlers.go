package http

import (
	"net/http"
	"strings"

	"github.com/denemehub/denemehub/internal/auth"
)

type authedUser struct {
	User auth.User `json:"user"`
	auth.TokenPair
}

func requestMeta(r *http.Request) auth.RequestMeta {
	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i > 0 {
		ip = ip[:i]
	}
	return auth.RequestMeta{UserAgent: r.UserAgent(), IPAddress: ip}
}

// RegisterHandler creates the account and immediately logs it in, so the
// caller gets an authenticated session in one round trip.
func RegisterHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterInput
		if !decode(w, r, &req) {
			return
		}
		if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"username, email and a password of at least 8 characters are required")
			return
		}
		if _, err := svc.Register(r.Context(), req); err != nil {
			FailErr(w, err)
			return
		}
		u, pair, err := svc.Login(r.Context(),
			auth.LoginInput{Email: req.Email, Password: req.Password}, requestMeta(r))
		if err != nil {
			FailErr(w, err)
			return
		}
		Created(w, authedUser{User: u, TokenPair: pair}, "registration successful")
	}
}

func LoginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginInput
		if !decode(w, r, &req) {
			return
		}
		u, pair, err := svc.Login(r.Context(), req, requestMeta(r))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, authedUser{User: u, TokenPair: pair})
	}
}

func RefreshHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "refresh_token is required")
			return
		}
		pair, err := svc.Refresh(r.Context(), req.RefreshToken, requestMeta(r))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, pair)
	}
}

func LogoutHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
			AllDevices   bool   `json:"all_devices"`
		}
		// body is optional: logout without a token is still a logout
		_ = decodeLenient(r, &req)
		userID := auth.SubjectFromContext(r.Context())
		if err := svc.Logout(r.Context(), userID, req.RefreshToken, req.AllDevices); err != nil {
			FailErr(w, err)
			return
		}
		OKMessage(w, nil, "logged out")
	}
}

func MeHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.CurrentUser(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			FailErr(w, err)
			return
		}
		OK(w, u)
	}
}
