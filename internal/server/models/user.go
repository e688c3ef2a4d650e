// Package models defines server-side data models persisted by repositories
// and returned by services.
package models

import "time"

type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Profession   string    `json:"profession"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
