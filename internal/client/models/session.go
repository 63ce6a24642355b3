package models

import "fmt"

// Role is the canonical two-valued user classification.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts exactly the persisted spellings "admin" and "user".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Session is the authenticated state of the client. A Session without a
// Token does not exist.
type Session struct {
	Token  string
	UserID string
	Email  string
	Role   Role
}

// Destination is the next top-level screen after an auth or onboarding
// event.
type Destination string

const (
	DestinationAdminHome  Destination = "admin_home"
	DestinationUserHome   Destination = "user_home"
	DestinationOnboarding Destination = "onboarding"
	DestinationSignIn     Destination = "sign_in"
)
