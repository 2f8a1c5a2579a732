package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is keyed by display name; the name doubles as the identity
// everywhere else in the system (message senders, participant lists,
// subteam members).
type User struct {
	DisplayName  string     `json:"display_name"`
	Role         string     `json:"role"`
	IsOnline     bool       `json:"is_online"`
	IsMuted      bool       `json:"is_muted"`
	IsBanned     bool       `json:"is_banned"`
	AllowedNames []string   `json:"allowed_names,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	SecretHash   string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
