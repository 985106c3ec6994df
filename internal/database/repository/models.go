package repository

import "time"

// Session represents the single stored login. Token holds the sealed value;
// callers decide how it is sealed.
type Session struct {
	Token     string
	UserID    string
	Username  string
	AvatarURL *string
	ExpiresAt *time.Time
	CreatedAt time.Time
}
