package models

import "time"

// User represents an authenticated back-office user
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Password holds the bcrypt hash for a user, stored separately from
// the user row so user listings never carry credential material
type Password struct {
	UserID string `json:"user_id"`
	Hash   string `json:"-"`
}

// Session represents a server-side login session backing a cookie token
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given instant
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
