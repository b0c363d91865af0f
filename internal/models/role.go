package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleMUA        Role = "MUA"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParseRole accepts any casing but only the four known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleMUA, RoleAdmin, RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Principal is an authenticated caller.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
