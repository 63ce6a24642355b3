// Package services contains the business logic of the dev backend:
// email lookup, password and OTP sign-in, and profile completion.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/dmitrijs2005/consultbook/internal/server/auth"
	"github.com/dmitrijs2005/consultbook/internal/server/config"
	"github.com/dmitrijs2005/consultbook/internal/server/otp"
	"github.com/dmitrijs2005/consultbook/internal/server/users"
)

// MinPasswordLength matches the client's onboarding rule.
const MinPasswordLength = 8

// AuthResult is what a successful sign-in returns.
type AuthResult struct {
	Token string
	User  *users.User
}

// ProfileInput is the body of a profile update.
type ProfileInput struct {
	Email        string
	Name         string
	Gender       string
	DateOfBirth  string
	TimeOfBirth  string
	PlaceOfBirth string
	Password     string
}

// UserService provides the authentication operations:
//   - CheckEmail: tell password accounts from the rest
//   - SignIn: verify a password and mint a token
//   - IssueOtp / VerifyOtp: emailed codes, creating the account on first use
//   - UpdateProfile: complete onboarding
type UserService struct {
	repo                        users.Repository
	codes                       *otp.Store
	mailer                      otp.Sender
	cfg                         *config.Config
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
}

func NewUserService(repo users.Repository, codes *otp.Store, mailer otp.Sender, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repo:                        repo,
		codes:                       codes,
		mailer:                      mailer,
		cfg:                         cfg,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "user_service"),
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmail reports whether email belongs to an account with a password.
// Accounts still in onboarding count as not registered.
func (s *UserService) CheckEmail(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.GetByEmail(ctx, normalize(email))
	if errors.Is(err, users.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return u.HasPassword(), nil
}

// SignIn checks the password of email. Unknown emails and accounts without
// a password are reported the same way as a wrong password.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.GetByEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !u.HasPassword() || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	return s.authenticated(u)
}

// IssueOtp sends a fresh code to email, replacing any earlier one.
func (s *UserService) IssueOtp(ctx context.Context, email string) error {
	email = normalize(email)
	code, err := s.codes.Issue(email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := s.mailer.Send(ctx, email, code); err != nil {
		return fmt.Errorf("%w: %v", ErrMailerFailed, err)
	}
	return nil
}

// VerifyOtp checks code and signs the owner of email in. The first
// successful code for an unknown email creates the account; emails listed
// as admins get the admin role.
func (s *UserService) VerifyOtp(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalize(email)
	if err := s.codes.Verify(email, code); err != nil {
		return nil, ErrInvalidOtp
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		role := users.RoleUser
		if s.cfg.IsAdmin(email) {
			role = users.RoleAdmin
		}
		u, err = s.repo.Create(ctx, &users.User{Email: email, Role: role})
		if err == nil {
			s.logger.Info(ctx, "account created", "user_id", u.ID, "role", string(role))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return s.authenticated(u)
}

// UpdateProfile completes the profile of userID on behalf of callerID.
// A password, when given, replaces the current one.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, userID string, in ProfileInput) (*users.User, error) {
	if callerID != userID {
		return nil, ErrForbidden
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if in.Email != "" && normalize(in.Email) != normalize(u.Email) {
		return nil, fmt.Errorf("%w: email does not match the account", ErrValidation)
	}
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	u.Profile = users.Profile{
		Name:         strings.TrimSpace(in.Name),
		Gender:       in.Gender,
		DateOfBirth:  in.DateOfBirth,
		TimeOfBirth:  in.TimeOfBirth,
		PlaceOfBirth: strings.TrimSpace(in.PlaceOfBirth),
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		u.PasswordHash = hash
	}

	u, err = s.repo.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return u, nil
}

func (s *UserService) authenticated(u *users.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return &AuthResult{Token: token, User: u}, nil
}
