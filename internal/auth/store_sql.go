package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Store is the persistence surface the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id string) (User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	CreateRefreshToken(ctx context.Context, t RefreshToken) error
	FindRefreshTokenByHash(ctx context.Context, hash string) (RefreshToken, error)
	RotateRefreshToken(ctx context.Context, id, replacedBy string) error
	RevokeRefreshToken(ctx context.Context, id, reason string) error
	RevokeAllRefreshTokens(ctx context.Context, userID, reason string) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,username,email,password_hash,is_active,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, btoi(u.IsActive),
		u.CreatedAt.Unix(), u.UpdatedAt.Unix())
	return err
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(ctx, s.db.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,is_active,created_at,updated_at,deleted_at
		 FROM users WHERE email=$1`, email))
}

func (s *SQLStore) FindUserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(ctx, s.db.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,is_active,created_at,updated_at,deleted_at
		 FROM users WHERE id=$1`, id))
}

func (s *SQLStore) scanUser(ctx context.Context, row *sql.Row) (User, error) {
	var u User
	var active int
	var created, updated int64
	var deleted sql.NullInt64
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &active, &created, &updated, &deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	u.IsActive = active != 0
	u.CreatedAt = time.Unix(created, 0).UTC()
	u.UpdatedAt = time.Unix(updated, 0).UTC()
	if deleted.Valid {
		t := time.Unix(deleted.Int64, 0).UTC()
		u.DeletedAt = &t
	}
	roles, err := s.rolesForUser(ctx, u.ID)
	if err != nil {
		return User{}, err
	}
	u.Roles = roles
	return u, nil
}

func (s *SQLStore) rolesForUser(ctx context.Context, userID string) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.name, COALESCE(r.description,''), r.is_system, r.created_at
		 FROM roles r JOIN user_roles ur ON ur.role_id=r.id
		 WHERE ur.user_id=$1 ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Role{}
	for rows.Next() {
		var r Role
		var system int
		var created int64
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &system, &created); err != nil {
			return nil, err
		}
		r.IsSystem = system != 0
		r.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM users WHERE email=$1`, email)
}

func (s *SQLStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM users WHERE username=$1`, username)
}

func (s *SQLStore) exists(ctx context.Context, q string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) CreateRefreshToken(ctx context.Context, t RefreshToken) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id,user_id,token_hash,expires_at,created_at,user_agent,ip_address)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt.Unix(), t.CreatedAt.Unix(), t.UserAgent, t.IPAddress)
	return err
}

func (s *SQLStore) FindRefreshTokenByHash(ctx context.Context, hash string) (RefreshToken, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,token_hash,expires_at,created_at,revoked_at,
		        COALESCE(revoked_reason,''),COALESCE(replaced_by,''),
		        COALESCE(user_agent,''),COALESCE(ip_address,'')
		 FROM refresh_tokens WHERE token_hash=$1`, hash)
	var t RefreshToken
	var expires, created int64
	var revoked sql.NullInt64
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &expires, &created,
		&revoked, &t.RevokedReason, &t.ReplacedBy, &t.UserAgent, &t.IPAddress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RefreshToken{}, ErrInvalidRefreshToken
		}
		return RefreshToken{}, err
	}
	t.ExpiresAt = time.Unix(expires, 0).UTC()
	t.CreatedAt = time.Unix(created, 0).UTC()
	if revoked.Valid {
		at := time.Unix(revoked.Int64, 0).UTC()
		t.RevokedAt = &at
	}
	return t, nil
}

func (s *SQLStore) RotateRefreshToken(ctx context.Context, id, replacedBy string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at=$1, revoked_reason=$2, replaced_by=$3 WHERE id=$4`,
		time.Now().Unix(), ReasonRotated, replacedBy, id)
	return err
}

func (s *SQLStore) RevokeRefreshToken(ctx context.Context, id, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at=$1, revoked_reason=$2 WHERE id=$3 AND revoked_at IS NULL`,
		time.Now().Unix(), reason, id)
	return err
}

func (s *SQLStore) RevokeAllRefreshTokens(ctx context.Context, userID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at=$1, revoked_reason=$2 WHERE user_id=$3 AND revoked_at IS NULL`,
		time.Now().Unix(), reason, userID)
	return err
}
