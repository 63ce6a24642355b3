package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/consultbook/internal/client/client"
	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/policy"
	"github.com/dmitrijs2005/consultbook/internal/logging"
)

// Grant is an accepted credential before it is turned into a session.
type Grant struct {
	Credential models.Credential
	Token      string
	User       models.UserRecord
}

// Outcome is where a verified user goes next. Session is nil when the
// backend accepted the credential without issuing a token.
type Outcome struct {
	Session     *models.Session
	Role        models.Role
	Destination models.Destination
}

// Provisional reports whether the user was verified without a session.
func (o *Outcome) Provisional() bool {
	return o.Session == nil
}

// CredentialVerifier exchanges a password or a code for a session.
type CredentialVerifier struct {
	api      client.Client
	sessions *SessionStore
	log      logging.Logger
}

func NewCredentialVerifier(api client.Client, sessions *SessionStore, log logging.Logger) *CredentialVerifier {
	if log == nil {
		log = logging.Nop()
	}
	return &CredentialVerifier{api: api, sessions: sessions, log: log}
}

// Verify checks cred with the backend and stores the resulting session.
// It returns only after the session is durable.
func (v *CredentialVerifier) Verify(ctx context.Context, cred models.Credential) (*Outcome, error) {
	g, err := v.Exchange(ctx, cred)
	if err != nil {
		return nil, err
	}
	return v.Establish(ctx, g)
}

// Exchange performs the backend call only. Nothing is stored.
func (v *CredentialVerifier) Exchange(ctx context.Context, cred models.Credential) (*Grant, error) {
	var (
		resp    *client.AuthResponse
		err     error
		success int
		reject  error
	)

	switch cred.Kind {
	case models.CredentialPassword:
		if cred.Secret == "" {
			return nil, ErrEmptyPassword
		}
		success, reject = http.StatusCreated, ErrInvalidCredentials
		resp, err = v.api.SignIn(ctx, cred.Email, cred.Secret)
	case models.CredentialOtp:
		if len(cred.Secret) != models.OtpLength {
			return nil, ErrIncompleteCode
		}
		success, reject = http.StatusOK, ErrInvalidOtp
		resp, err = v.api.VerifyOTP(ctx, cred.Email, cred.Secret)
	default:
		return nil, fmt.Errorf("unknown credential kind %d", cred.Kind)
	}

	if err != nil {
		v.log.Warn(ctx, "verification call failed", "kind", cred.Kind, "error", err)
		if errors.Is(err, client.ErrUnavailable) || errors.Is(err, client.ErrMalformedResponse) {
			return nil, fmt.Errorf("%w: %w", ErrVerificationUnreachable, err)
		}
		return nil, err
	}

	if resp.Status != success {
		v.log.Info(ctx, "credential rejected", "kind", cred.Kind, "status", resp.Status)
		return nil, withMessage(reject, resp.Message)
	}

	return &Grant{Credential: cred, Token: resp.Token, User: resp.User}, nil
}

// Establish stores the session carried by g and picks the destination. A
// grant without a token only records the provisional user role.
func (v *CredentialVerifier) Establish(ctx context.Context, g *Grant) (*Outcome, error) {
	if g.Token == "" {
		if err := v.sessions.CommitProvisional(ctx, g.Credential.Email, models.RoleUser); err != nil {
			v.log.Warn(ctx, "cannot store provisional role", "error", err)
		}
		return &Outcome{Role: models.RoleUser, Destination: models.DestinationOnboarding}, nil
	}

	role := policy.ResolveRole(g.User)
	sess := models.Session{
		Token:  g.Token,
		UserID: g.User.ID(),
		Email:  g.Credential.Email,
		Role:   role,
	}
	if err := v.sessions.Commit(ctx, sess); err != nil {
		return nil, err
	}
	if stored, err := v.sessions.Read(ctx); err == nil {
		sess = stored
	} else {
		v.log.Warn(ctx, "cannot read back session", "error", err)
	}

	existing := g.Credential.Kind == models.CredentialPassword || g.Credential.ExistingAccount
	hasName := strings.TrimSpace(g.User.Name()) != ""

	return &Outcome{
		Session:     &sess,
		Role:        role,
		Destination: policy.Redirect(role, existing, hasName),
	}, nil
}
