package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// TokenPair is the credential pair handed to clients. The refresh token is
// the raw value; it is never stored server-side.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequestMeta is recorded with each issued refresh token.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

type Service struct {
	store      Store
	tokens     *TokenService
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(store Store, tokens *TokenService, refreshTTL time.Duration) *Service {
	return &Service{store: store, tokens: tokens, refreshTTL: refreshTTL, now: time.Now}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if exists, err := s.store.EmailExists(ctx, in.Email); err != nil {
		return User{}, err
	} else if exists {
		return User{}, ErrDuplicateEmail
	}
	if exists, err := s.store.UsernameExists(ctx, in.Username); err != nil {
		return User{}, err
	} else if exists {
		return User{}, ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	u := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		Roles:        []Role{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput, meta RequestMeta) (User, TokenPair, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	u, err := s.store.FindUserByEmail(ctx, in.Email)
	if err != nil {
		if err == ErrUserNotFound {
			return User{}, TokenPair{}, ErrInvalidCredentials
		}
		return User{}, TokenPair{}, err
	}
	if u.IsDeleted() {
		return User{}, TokenPair{}, ErrAccountDeleted
	}
	if !u.IsActive {
		return User{}, TokenPair{}, ErrAccountDeactivated
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, u, meta)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the presented refresh token: the old row is revoked with
// reason "rotated" and linked to its replacement, so reuse of a rotated
// token is detectable.
func (s *Service) Refresh(ctx context.Context, rawToken string, meta RequestMeta) (TokenPair, error) {
	stored, err := s.store.FindRefreshTokenByHash(ctx, HashRefreshToken(rawToken))
	if err != nil {
		return TokenPair{}, err
	}
	if stored.IsRevoked() {
		return TokenPair{}, ErrRefreshTokenRevoked
	}
	if stored.IsExpired() {
		return TokenPair{}, ErrRefreshTokenExpired
	}

	u, err := s.store.FindUserByID(ctx, stored.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if u.IsDeleted() {
		return TokenPair{}, ErrAccountDeleted
	}
	if !u.IsActive {
		return TokenPair{}, ErrAccountDeactivated
	}

	access, err := s.tokens.IssueAccessToken(u.ID, u.RoleNames())
	if err != nil {
		return TokenPair{}, err
	}
	raw, row := s.newRefreshToken(u.ID, meta)
	if err := s.store.CreateRefreshToken(ctx, row); err != nil {
		return TokenPair{}, err
	}
	if err := s.store.RotateRefreshToken(ctx, stored.ID, row.ID); err != nil {
		return TokenPair{}, err
	}
	return s.pair(access, raw), nil
}

// Logout revokes the presented refresh token, or every token for the user
// when allDevices is set. Unknown or foreign tokens are ignored: logout is
// always effective from the caller's point of view.
func (s *Service) Logout(ctx context.Context, userID, rawToken string, allDevices bool) error {
	if allDevices {
		return s.store.RevokeAllRefreshTokens(ctx, userID, ReasonLogoutAll)
	}
	if rawToken == "" {
		return nil
	}
	stored, err := s.store.FindRefreshTokenByHash(ctx, HashRefreshToken(rawToken))
	if err != nil {
		if err == ErrInvalidRefreshToken {
			return nil
		}
		return err
	}
	if stored.UserID != userID {
		return nil
	}
	return s.store.RevokeRefreshToken(ctx, stored.ID, ReasonLogout)
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (User, error) {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if u.IsDeleted() {
		return User{}, ErrAccountDeleted
	}
	return u, nil
}

func (s *Service) issuePair(ctx context.Context, u User, meta RequestMeta) (TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(u.ID, u.RoleNames())
	if err != nil {
		return TokenPair{}, err
	}
	raw, row := s.newRefreshToken(u.ID, meta)
	if err := s.store.CreateRefreshToken(ctx, row); err != nil {
		return TokenPair{}, err
	}
	return s.pair(access, raw), nil
}

func (s *Service) newRefreshToken(userID string, meta RequestMeta) (raw string, row RefreshToken) {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	raw = base64.RawURLEncoding.EncodeToString(buf)
	now := s.now().UTC()
	row = RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: HashRefreshToken(raw),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
	}
	return raw, row
}

func (s *Service) pair(access, refresh string) TokenPair {
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.tokens.AccessTokenTTL().Seconds()),
		RefreshExpiresIn: int64(s.refreshTTL.Seconds()),
	}
}

// HashRefreshToken maps a raw refresh token to its storage/lookup key.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
