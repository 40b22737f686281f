package domain

import "time"

// Claims is what a verified session token asserts.
type Claims struct {
	UserID    UserID
	Username  string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

type RevokedToken struct {
	TokenID   string
	UserID    UserID
	ExpiresAt time.Time
	RevokedAt time.Time
}
