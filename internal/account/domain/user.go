package domain

import "time"

type UserID string

// User is immutable once created; Username is compared case-sensitively.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
}
