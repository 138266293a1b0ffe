// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account (the persisted identity).
//
// Email is always stored normalized (trimmed, lowercase) and is unique across
// all users; every store backend enforces that with a unique index.
//
// PasswordHash carries a `json:"-"` tag so a User can never leak its hash
// through an API response, even if a handler encodes the struct directly.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Favorites    []string  `json:"favorites"` // module IDs, in the order they were added
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the subset of a User that is returned to clients after
// registration and login.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips everything but id, name and email.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
