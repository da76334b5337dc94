// Package auth contains the session types shared between the session
// store, the HTTP layer, and the identity service.
package auth

import "time"

// Session is the server-side view of one browser's identity. Every
// visitor gets a session; Anonymous flips to false after login or
// registration replaces it.
type Session struct {
	ID        string    `json:"id"`
	UserUID   string    `json:"user_uid"`
	Email     string    `json:"email,omitempty"`
	Anonymous bool      `json:"anonymous"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
