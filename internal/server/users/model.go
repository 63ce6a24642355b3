// Package users keeps the accounts of the dev backend.
package users

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account. PasswordHash is nil until the profile is finalized,
// so accounts created by an OTP login have no password.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         Role
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the onboarding fields as the client sent them.
type Profile struct {
	Name         string
	Gender       string
	DateOfBirth  string
	TimeOfBirth  string
	PlaceOfBirth string
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return len(u.PasswordHash) > 0
}
