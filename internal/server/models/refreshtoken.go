package models

import "time"

// RefreshToken is the single live refresh credential of a user.
type RefreshToken struct {
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
