package domain

import "time"

// RoleAdmin is the designated unrestricted role. Principals holding it bypass
// every policy rule and never generate violations.
const RoleAdmin = "Admin"

// RoleGuest is the role assigned to OTP-provisioned guest accounts.
const RoleGuest = "Guest"

// Role identifies a principal class. Exactly one Policy is bound to each role.
type Role struct {
	ID          string
	Name        string
	Description *string
}

// IsUnrestricted reports whether principals holding the role bypass policy checks.
func (r Role) IsUnrestricted() bool {
	return r.Name == RoleAdmin
}

// User mirrors the persisted representation in the users table. Guest accounts
// carry no password hash and authenticate through the OTP flow.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     *string
	PasswordHash *string
	RoleID       string
	RoleName     string
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// UserFilter narrows administrative user listings. Zero values mean "any".
type UserFilter struct {
	RoleName string
	Active   *bool
	Limit    int
}

// Principal is the resolved identity the decision engine evaluates against.
type Principal struct {
	UserID   string
	RoleID   string
	RoleName string
	IsActive bool
}
