package domain

import (
	"fmt"
	"time"
)

// User is an account that can own tasks. IsAdmin grants access to
// maintenance operations such as the overdue sweep.
type User struct {
	ID        int64
	Username  string
	IsAdmin   bool
	CreatedAt time.Time
}

// Principal is the identity an operation runs as. The zero value is the
// anonymous principal.
type Principal struct {
	user *User
}

// Anonymous returns the principal used when no identity could be resolved.
func Anonymous() Principal {
	return Principal{}
}

// Authenticated returns a principal bound to u.
func Authenticated(u User) Principal {
	return Principal{user: &u}
}

// IsAuthenticated reports whether the principal is bound to a user.
func (p Principal) IsAuthenticated() bool {
	return p.user != nil
}

// UserID returns the bound user id, or false for the anonymous principal.
func (p Principal) UserID() (int64, bool) {
	if p.user == nil {
		return 0, false
	}
	return p.user.ID, true
}

// IsAdmin reports whether the bound user carries the admin flag.
func (p Principal) IsAdmin() bool {
	return p.user != nil && p.user.IsAdmin
}

// User returns a copy of the bound user, if any.
func (p Principal) User() (User, bool) {
	if p.user == nil {
		return User{}, false
	}
	return *p.user, true
}

func (p Principal) String() string {
	if p.user == nil {
		return "anonymous"
	}
	return fmt.Sprintf("user:%d", p.user.ID)
}
