// Package models defines the data exchanged between the client's auth and
// onboarding components.
package models

// EmailOutcome classifies a checkEmail response.
type EmailOutcome int

const (
	EmailOutcomeError EmailOutcome = iota
	EmailOutcomeNewUser
	EmailOutcomeExistingUser
)

func (o EmailOutcome) String() string {
	switch o {
	case EmailOutcomeNewUser:
		return "new_user"
	case EmailOutcomeExistingUser:
		return "existing_user"
	default:
		return "error"
	}
}

// EmailCheckResult is the classified form of one checkEmail call.
type EmailCheckResult struct {
	Outcome   EmailOutcome
	RawStatus int
	Message   string
}

// CredentialKind selects the verification collaborator.
type CredentialKind int

const (
	CredentialPassword CredentialKind = iota
	CredentialOtp
)

func (k CredentialKind) String() string {
	if k == CredentialOtp {
		return "otp"
	}
	return "password"
}

// Credential is what the user proves their identity with. Secret is the
// password or the 6-digit code depending on Kind. It is never persisted.
//
// ExistingAccount marks an OTP login as belonging to an account that was
// already set up; password logins always are.
type Credential struct {
	Kind            CredentialKind
	Email           string
	Secret          string
	ExistingAccount bool
}

// UserRecord is a user object as returned by the backend. Field names vary
// between endpoints, so it is kept untyped.
type UserRecord map[string]any

// String returns the value at key when it is a string.
func (u UserRecord) String(key string) string {
	s, _ := u[key].(string)
	return s
}

// Name returns the profile name, "" when absent.
func (u UserRecord) Name() string {
	return u.String("name")
}

// ID returns the user identifier under any of the spellings the backend
// uses.
func (u UserRecord) ID() string {
	for _, key := range []string{"_id", "id", "userId"} {
		if v := u.String(key); v != "" {
			return v
		}
	}
	return ""
}

// Place is a geocoder suggestion for the place of birth.
type Place struct {
	DisplayName string
	Lat         string
	Lon         string
}
