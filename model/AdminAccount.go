package model

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMaster Role = "master"
)

// Allows reports whether an account holding role r may perform an
// operation gated on the required role. Master outranks admin.
func (r Role) Allows(required Role) bool {
	if r == RoleMaster {
		return true
	}
	return r == required
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMaster
}

type AdminAccount struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
