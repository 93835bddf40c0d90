package domain

import "errors"

// Role is the authorization level carried in the "role" claim.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var ErrInvalidRole = errors.New("domain: invalid role")

// ParseRole maps a claim value back onto the closed set of roles. Unknown
// values are an error; nothing falls back to RoleUser.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) String() string { return string(r) }
