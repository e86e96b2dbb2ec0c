// Package http carries the REST handlers. Every response, success or
// failure, is wrapped in the platform envelope so clients can rely on a
// single shape:
//
//	{"success":true,"data":...,"message":"..."}
//	{"success":false,"error":{"code":"...","message":"...","details":[...]}}
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/denemehub/denemehub/internal/auth"
	"github.com/denemehub/denemehub/internal/catalog"
	"github.com/denemehub/denemehub/internal/practice"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    any         `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *errDetail  `json:"error,omitempty"`
}

type errDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a success envelope with a message and 201.
func Created(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: data, Message: message})
}

// OKMessage writes a success envelope with a message.
func OKMessage(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

// Fail writes an error envelope.
func Fail(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, envelope{Success: false, Error: &errDetail{Code: code, Message: message, Details: details}})
}

// Unauthorized matches the signature auth.JWTMiddleware expects.
func Unauthorized(w http.ResponseWriter, code, msg string) {
	Fail(w, http.StatusUnauthorized, code, msg)
}

// ForbiddenHandler is the rbac guard's deny writer.
func ForbiddenHandler(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
}

// FailErr maps domain errors onto HTTP status + error code.
func FailErr(w http.ResponseWriter, err error) {
	var retake *practice.RetakeError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	case errors.Is(err, auth.ErrAccountDeactivated):
		Fail(w, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "account is deactivated")
	case errors.Is(err, auth.ErrAccountDeleted):
		Fail(w, http.StatusForbidden, "ACCOUNT_DELETED", "account is deleted")
	case errors.Is(err, auth.ErrDuplicateEmail):
		Fail(w, http.StatusConflict, "DUPLICATE_EMAIL", "email already exists")
	case errors.Is(err, auth.ErrDuplicateUsername):
		Fail(w, http.StatusConflict, "DUPLICATE_USERNAME", "username already exists")
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		Fail(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "invalid refresh token")
	case errors.Is(err, auth.ErrRefreshTokenExpired):
		Fail(w, http.StatusUnauthorized, "REFRESH_TOKEN_EXPIRED", "refresh token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Fail(w, http.StatusUnauthorized, "REFRESH_TOKEN_REVOKED", "refresh token revoked")
	case errors.Is(err, auth.ErrUserNotFound):
		Fail(w, http.StatusNotFound, "NOT_FOUND", "user not found")
	case errors.Is(err, auth.ErrRoleNotFound):
		Fail(w, http.StatusNotFound, "NOT_FOUND", "role not found")
	case errors.Is(err, auth.ErrDuplicateRole):
		Fail(w, http.StatusConflict, "CONFLICT", "role already exists")
	case errors.Is(err, auth.ErrSystemRole):
		Fail(w, http.StatusConflict, "CONFLICT", "system roles cannot be modified")
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, practice.ErrTestNotFound),
		errors.Is(err, practice.ErrResultNotFound):
		Fail(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, catalog.ErrDuplicate):
		Fail(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, catalog.ErrInUse):
		Fail(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, practice.ErrLengthMismatch),
		errors.Is(err, practice.ErrBadAnswerKey):
		Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &retake):
		Fail(w, http.StatusConflict, "CANNOT_RETAKE_YET", retake.Error())
	default:
		Fail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body")
		return false
	}
	return true
}

// decodeLenient ignores a missing or malformed body.
func decodeLenient(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
