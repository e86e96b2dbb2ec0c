package auth

import "time"

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	Roles        []Role     `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

func (u User) IsDeleted() bool { return u.DeletedAt != nil }

// RoleNames flattens the user's roles for token claims. Users with no
// explicit assignment act as plain "user".
func (u User) RoleNames() []string {
	if len(u.Roles) == 0 {
		return []string{"user"}
	}
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
}

// RefreshToken is the stored side of the credential pair. Only the SHA-256
// hash of the token ever hits the database.
type RefreshToken struct {
	ID            string
	UserID        string
	TokenHash     string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	RevokedAt     *time.Time
	RevokedReason string
	ReplacedBy    string
	UserAgent     string
	IPAddress     string
}

func (t RefreshToken) IsExpired() bool { return time.Now().After(t.ExpiresAt) }
func (t RefreshToken) IsRevoked() bool { return t.RevokedAt != nil }

// Revocation reasons recorded on refresh_tokens rows.
const (
	ReasonLogout    = "logout"
	ReasonLogoutAll = "logout_all"
	ReasonRotated   = "rotated"
)
