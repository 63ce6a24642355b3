package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/dmitrijs2005/consultbook/internal/server/auth"
	"github.com/dmitrijs2005/consultbook/internal/server/config"
	"github.com/dmitrijs2005/consultbook/internal/server/otp"
	"github.com/dmitrijs2005/consultbook/internal/server/users"
)

// fakeSender remembers the last code it was asked to deliver.
type fakeSender struct {
	Err       error
	Calls     int
	LastEmail string
	LastCode  string
}

func (f *fakeSender) Send(_ context.Context, email, code string) error {
	f.Calls++
	f.LastEmail, f.LastCode = email, code
	return f.Err
}

func newUserService(t *testing.T, admins ...string) (*UserService, *fakeSender, *users.MemoryRepository) {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		AdminEmails:                 admins,
	}
	repo := users.NewMemoryRepository()
	mail := &fakeSender{}
	return NewUserService(repo, otp.NewStore(time.Minute), mail, cfg, logging.Nop()), mail, repo
}

// otpLogin signs email in with an emailed code.
func otpLogin(t *testing.T, s *UserService, mail *fakeSender, email string) *AuthResult {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.IssueOtp(ctx, email))
	res, err := s.VerifyOtp(ctx, email, mail.LastCode)
	require.NoError(t, err)
	return res
}

func TestCheckEmail(t *testing.T) {
	ctx := context.Background()
	s, mail, _ := newUserService(t)

	registered, err := s.CheckEmail(ctx, "amy@x.com")
	require.NoError(t, err)
	assert.False(t, registered, "unknown email")

	res := otpLogin(t, s, mail, "amy@x.com")
	registered, err = s.CheckEmail(ctx, "AMY@x.com")
	require.NoError(t, err)
	assert.False(t, registered, "no password yet")

	_, err = s.UpdateProfile(ctx, res.User.ID, res.User.ID, ProfileInput{Name: "Amy", Password: "long password"})
	require.NoError(t, err)
	registered, err = s.CheckEmail(ctx, "amy@x.com")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestVerifyOtp_CreatesAccountOnce(t *testing.T) {
	s, mail, _ := newUserService(t)

	first := otpLogin(t, s, mail, " Amy@X.com ")
	assert.Equal(t, "amy@x.com", mail.LastEmail)
	assert.Equal(t, "amy@x.com", first.User.Email)
	assert.Equal(t, users.RoleUser, first.User.Role)

	id, err := auth.GetUserIDFromToken(first.Token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, id)

	second := otpLogin(t, s, mail, "amy@x.com")
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestVerifyOtp_AdminSeed(t *testing.T) {
	s, mail, _ := newUserService(t, "root@x.com")

	res := otpLogin(t, s, mail, "root@x.com")
	assert.Equal(t, users.RoleAdmin, res.User.Role)
}

func TestVerifyOtp_WrongCode(t *testing.T) {
	ctx := context.Background()
	s, mail, _ := newUserService(t)

	_, err := s.VerifyOtp(ctx, "a@x.com", "123456")
	require.ErrorIs(t, err, ErrInvalidOtp, "nothing issued")

	require.NoError(t, s.IssueOtp(ctx, "a@x.com"))
	wrong := "000000"
	if mail.LastCode == wrong {
		wrong = "111111"
	}
	_, err = s.VerifyOtp(ctx, "a@x.com", wrong)
	require.ErrorIs(t, err, ErrInvalidOtp)
}

func TestIssueOtp_MailerFailure(t *testing.T) {
	s, mail, _ := newUserService(t)
	mail.Err = errors.New("smtp down")

	err := s.IssueOtp(context.Background(), "a@x.com")
	require.ErrorIs(t, err, ErrMailerFailed)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	s, mail, _ := newUserService(t)

	_, err := s.SignIn(ctx, "amy@x.com", "whatever1")
	require.ErrorIs(t, err, ErrUnauthorized, "unknown email")

	res := otpLogin(t, s, mail, "amy@x.com")
	_, err = s.SignIn(ctx, "amy@x.com", "")
	require.ErrorIs(t, err, ErrUnauthorized, "no password yet")

	_, err = s.UpdateProfile(ctx, res.User.ID, res.User.ID, ProfileInput{Password: "correct horse"})
	require.NoError(t, err)

	_, err = s.SignIn(ctx, "amy@x.com", "wrong horse")
	require.ErrorIs(t, err, ErrUnauthorized)

	ok, err := s.SignIn(ctx, "Amy@x.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, ok.User.ID)
	assert.NotEmpty(t, ok.Token)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s, mail, repo := newUserService(t)
	res := otpLogin(t, s, mail, "amy@x.com")
	id := res.User.ID

	t.Run("other user", func(t *testing.T) {
		_, err := s.UpdateProfile(ctx, "someone-else", id, ProfileInput{Name: "Amy"})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.UpdateProfile(ctx, "ghost", "ghost", ProfileInput{Name: "Amy"})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("email mismatch", func(t *testing.T) {
		_, err := s.UpdateProfile(ctx, id, id, ProfileInput{Email: "b@x.com"})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := s.UpdateProfile(ctx, id, id, ProfileInput{Password: "short"})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("saves profile", func(t *testing.T) {
		u, err := s.UpdateProfile(ctx, id, id, ProfileInput{
			Email: "AMY@x.com", Name: " Amy Pond ", Gender: "female",
			DateOfBirth: "1990-05-17", TimeOfBirth: "2:35 PM", PlaceOfBirth: "Leadworth",
			Password: "long password",
		})
		require.NoError(t, err)
		assert.Equal(t, users.Profile{
			Name: "Amy Pond", Gender: "female", DateOfBirth: "1990-05-17",
			TimeOfBirth: "2:35 PM", PlaceOfBirth: "Leadworth",
		}, u.Profile)

		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.HasPassword())
		assert.NotEqual(t, []byte("long password"), stored.PasswordHash)
	})
}
