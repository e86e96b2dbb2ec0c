package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// AdminStore is the user and role management surface exposed to the
// admin API. SQLStore implements it alongside Store.
type AdminStore interface {
	ListUsers(ctx context.Context, page, perPage int) ([]User, int, error)
	SetUserActive(ctx context.Context, id string, active bool) error
	SoftDeleteUser(ctx context.Context, id string) error

	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id string) (Role, error)
	CreateRole(ctx context.Context, r Role) error
	UpdateRole(ctx context.Context, r Role) error
	DeleteRole(ctx context.Context, id string) error

	AssignRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
}

func (s *SQLStore) ListUsers(ctx context.Context, page, perPage int) ([]User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id,username,email,is_active,created_at,updated_at
		 FROM users WHERE deleted_at IS NULL
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		var active int
		var created, updated int64
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &active, &created, &updated); err != nil {
			return nil, 0, err
		}
		u.IsActive = active != 0
		u.CreatedAt = time.Unix(created, 0).UTC()
		u.UpdatedAt = time.Unix(updated, 0).UTC()
		roles, err := s.rolesForUser(ctx, u.ID)
		if err != nil {
			return nil, 0, err
		}
		u.Roles = roles
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) SetUserActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active=$1, updated_at=$2 WHERE id=$3 AND deleted_at IS NULL`,
		btoi(active), time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return userAffected(res)
}

// SoftDeleteUser marks the account deleted and revokes all of its
// refresh tokens. Historical results stay in place.
func (s *SQLStore) SoftDeleteUser(ctx context.Context, id string) error {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET deleted_at=$1, is_active=0, updated_at=$1 WHERE id=$2 AND deleted_at IS NULL`,
		now, id)
	if err != nil {
		return err
	}
	if err := userAffected(res); err != nil {
		return err
	}
	return s.RevokeAllRefreshTokens(ctx, id, ReasonLogoutAll)
}

func userAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *SQLStore) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description,''), is_system, created_at
		 FROM roles ORDER BY name`)
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

func (s *SQLStore) GetRole(ctx context.Context, id string) (Role, error) {
	var r Role
	var system int
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description,''), is_system, created_at
		 FROM roles WHERE id=$1`, id).
		Scan(&r.ID, &r.Name, &r.Description, &system, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Role{}, ErrRoleNotFound
	}
	if err != nil {
		return Role{}, err
	}
	r.IsSystem = system != 0
	r.CreatedAt = time.Unix(created, 0).UTC()
	return r, nil
}

func (s *SQLStore) CreateRole(ctx context.Context, r Role) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO roles (id,name,description,is_system,created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		r.ID, r.Name, r.Description, btoi(r.IsSystem), r.CreatedAt.Unix())
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateRole
	}
	return err
}

func (s *SQLStore) UpdateRole(ctx context.Context, r Role) error {
	existing, err := s.GetRole(ctx, r.ID)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return ErrSystemRole
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE roles SET name=$1, description=$2 WHERE id=$3`,
		r.Name, r.Description, r.ID)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateRole
	}
	return err
}

func (s *SQLStore) DeleteRole(ctx context.Context, id string) error {
	existing, err := s.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return ErrSystemRole
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM roles WHERE id=$1`, id)
	return err
}

func (s *SQLStore) AssignRole(ctx context.Context, userID, roleID string) error {
	if _, err := s.FindUserByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1,$2)`,
		userID, roleID)
	if err != nil && isUniqueViolation(err) {
		return nil // already assigned
	}
	return err
}

func (s *SQLStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id=$1 AND role_id=$2`,
		userID, roleID)
	return err
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
