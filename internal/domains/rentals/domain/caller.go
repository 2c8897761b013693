package domain

import "strings"

// Role is supplied by the upstream authentication layer.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleVendor   Role = "VENDOR"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole normalizes a role header value; unknown values yield an empty role.
func ParseRole(raw string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return r
	default:
		return ""
	}
}

// RoleNames lists the recognized role header values.
func RoleNames() []string {
	return []string{string(RoleCustomer), string(RoleVendor), string(RoleAdmin)}
}

// Caller identifies who is invoking an operation.
type Caller struct {
	UserID int64
	Role   Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// CanActFor reports whether the caller is the given user or an admin.
func (c Caller) CanActFor(userID int64) bool {
	return c.IsAdmin() || (c.UserID != 0 && c.UserID == userID)
}
