package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role controls which notifications a connected user receives
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
	RoleOperator Role = "operator"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleReviewer: true,
	RoleOperator: true,
}

// User is the identity issued by the auth service. It is read-only here:
// this service never creates or mutates users.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (r Role) IsValid() bool {
	return validRoles[r]
}
