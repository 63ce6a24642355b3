package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/consultbook/internal/common"
	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var errNoUserIDClaim = errors.New("token carries no userId claim")

// sessionKeys are written and removed together.
var sessionKeys = []string{common.KeyToken, common.KeyEmail, common.KeyUserID, common.KeyUserRole}

// SessionStore is the only place the client reads or writes its session.
type SessionStore struct {
	repo metadata.Repository
	log  logging.Logger
}

func NewSessionStore(repo metadata.Repository, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	return &SessionStore{repo: repo, log: log}
}

// Commit stores s as a single batch and returns once it is durable. When
// s has no UserID it is taken from the token payload; a token that cannot
// be decoded leaves the userId key unset.
func (s *SessionStore) Commit(ctx context.Context, sess models.Session) error {
	if sess.Token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidSession)
	}
	if _, err := models.ParseRole(string(sess.Role)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if sess.UserID == "" {
		id, err := userIDFromToken(sess.Token)
		if err != nil {
			s.log.Warn(ctx, "cannot derive user id from token", "error", err)
		}
		sess.UserID = id
	}

	b := metadata.Batch{Set: map[string][]byte{
		common.KeyToken:    []byte(sess.Token),
		common.KeyUserRole: []byte(sess.Role),
	}}
	if sess.Email != "" {
		b.Set[common.KeyEmail] = []byte(sess.Email)
	}
	if sess.UserID != "" {
		b.Set[common.KeyUserID] = []byte(sess.UserID)
	} else {
		b.Delete = append(b.Delete, common.KeyUserID)
	}

	if err := s.repo.Apply(ctx, b); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	s.log.Debug(ctx, "session committed", "role", sess.Role, "user_id", sess.UserID)
	return nil
}

// Read returns the stored session or ErrNoSession when there is no token.
func (s *SessionStore) Read(ctx context.Context) (models.Session, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("read session: %w", err)
	}

	token := string(all[common.KeyToken])
	if token == "" {
		return models.Session{}, ErrNoSession
	}

	role, err := models.ParseRole(string(all[common.KeyUserRole]))
	if err != nil {
		s.log.Warn(ctx, "stored session has no valid role", "error", err)
		return models.Session{}, ErrNoSession
	}

	return models.Session{
		Token:  token,
		UserID: string(all[common.KeyUserID]),
		Email:  string(all[common.KeyEmail]),
		Role:   role,
	}, nil
}

// Clear removes the session keys. The draft is left alone.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.repo.Apply(ctx, metadata.Batch{Delete: sessionKeys}); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// RememberEmail records the email a new sign-in is for. Any stored
// session is dropped in the same batch.
func (s *SessionStore) RememberEmail(ctx context.Context, email string) error {
	b := metadata.Batch{
		Set:    map[string][]byte{common.KeyEmail: []byte(email)},
		Delete: []string{common.KeyToken, common.KeyUserID, common.KeyUserRole},
	}
	if err := s.repo.Apply(ctx, b); err != nil {
		return fmt.Errorf("remember email: %w", err)
	}
	return nil
}

// Email returns the remembered email, "" when there is none.
func (s *SessionStore) Email(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.KeyEmail)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// CommitProvisional records an account that was verified without being
// issued a token: the role marker and email are written and any token or
// userId is removed in one batch.
func (s *SessionStore) CommitProvisional(ctx context.Context, email string, role models.Role) error {
	if _, err := models.ParseRole(string(role)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	b := metadata.Batch{
		Set:    map[string][]byte{common.KeyUserRole: []byte(role)},
		Delete: []string{common.KeyToken, common.KeyUserID},
	}
	if email != "" {
		b.Set[common.KeyEmail] = []byte(email)
	}
	if err := s.repo.Apply(ctx, b); err != nil {
		return fmt.Errorf("commit provisional session: %w", err)
	}
	return nil
}

// Role returns the stored role marker, "" when none is stored.
func (s *SessionStore) Role(ctx context.Context) (models.Role, error) {
	v, err := s.repo.Get(ctx, common.KeyUserRole)
	if err != nil || v == nil {
		return "", err
	}
	return models.ParseRole(string(v))
}

func userIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	id, ok := claims[common.KeyUserID].(string)
	if !ok || id == "" {
		return "", errNoUserIDClaim
	}
	return id, nil
}
