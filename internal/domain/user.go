package domain

import "time"

// Role enumerates the access levels an account can hold.
type Role string

const (
	RoleUser         Role = "USER"
	RoleSupportAgent Role = "SUPPORT_AGENT"
	RoleAdmin        Role = "ADMIN"
)

// ParseRole validates a role string received over the wire.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleUser, RoleSupportAgent, RoleAdmin:
		return Role(value), true
	}
	return "", false
}

// User is the single principal type: end-users, support agents and
// administrators all live in one table distinguished by Role.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
