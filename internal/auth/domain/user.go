package domain

import "time"

// User is the account record the resolver looks up by RealID. It carries no
// password material; credentials are checked before a token is ever issued.
type User struct {
	ID        int64
	RealID    string // stable identifier, used as the token subject
	Nickname  string
	Name      string
	Role      Role
	CreatedAt time.Time
	DeletedAt *time.Time // soft delete, nil while active
}

// Active reports whether the account has not been soft deleted.
func (u User) Active() bool { return u.DeletedAt == nil }
