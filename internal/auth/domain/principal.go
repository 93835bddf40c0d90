package domain

// Principal is the identity resolved from a verified access token for the
// lifetime of one request.
type Principal struct {
	ID          int64
	RealID      string
	Nickname    string
	Role        Role
	Name        string
	Authorities []string
}

// NewPrincipal builds the principal for u, granting a single authority named
// after its role.
func NewPrincipal(u User, role Role) Principal {
	return Principal{
		ID:          u.ID,
		RealID:      u.RealID,
		Nickname:    u.Nickname,
		Role:        role,
		Name:        u.Name,
		Authorities: []string{role.String()},
	}
}

// HasAuthority reports whether the principal was granted authority a.
func (p Principal) HasAuthority(a string) bool {
	for _, have := range p.Authorities {
		if have == a {
			return true
		}
	}
	return false
}
