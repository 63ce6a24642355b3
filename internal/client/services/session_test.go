package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/consultbook/internal/common"
)

func TestSessionStore_CommitThenRead(t *testing.T) {
	_, store, _ := newStores(t)
	ctx := context.Background()

	in := models.Session{Token: "t1", UserID: "u1", Email: "a@b.com", Role: models.RoleAdmin}
	require.NoError(t, store.Commit(ctx, in))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionStore_TokenAndRoleTravelTogether(t *testing.T) {
	_, store, _ := newStores(t)
	ctx := context.Background()

	for _, s := range []models.Session{
		{Token: "t1", Role: models.RoleUser},
		{Token: "t2", Role: models.RoleAdmin, Email: "x@y.io"},
		{Token: "t3", Role: models.RoleUser, UserID: "u3"},
	} {
		require.NoError(t, store.Commit(ctx, s))
		got, err := store.Read(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, got.Token)
		assert.NotEmpty(t, got.Role)
		assert.Equal(t, s.Token, got.Token)
		assert.Equal(t, s.Role, got.Role)
	}
}

func TestSessionStore_Commit_DerivesUserIDFromToken(t *testing.T) {
	_, store, _ := newStores(t)
	ctx := context.Background()

	token := signedToken(t, jwt.MapClaims{"userId": "u-42"})
	require.NoError(t, store.Commit(ctx, models.Session{Token: token, Role: models.RoleUser}))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-42", got.UserID)
}

func TestSessionStore_Commit_UndecodableTokenDropsStaleUserID(t *testing.T) {
	repo, store, _ := newStores(t)
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, models.Session{Token: "t1", UserID: "old", Role: models.RoleUser}))
	require.NoError(t, store.Commit(ctx, models.Session{Token: "not-a-jwt", Role: models.RoleUser}))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "not-a-jwt", got.Token)
	assert.Empty(t, got.UserID)

	v, err := repo.Get(ctx, common.KeyUserID)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSessionStore_Commit_RejectsInvalid(t *testing.T) {
	repo, store, _ := newStores(t)
	ctx := context.Background()

	err := store.Commit(ctx, models.Session{Role: models.RoleUser})
	require.ErrorIs(t, err, ErrInvalidSession)

	err = store.Commit(ctx, models.Session{Token: "t", Role: "superuser"})
	require.ErrorIs(t, err, ErrInvalidSession)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionStore_Commit_StorageFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("disk full"))

	store := NewSessionStore(metadata.NewSQLiteRepository(db), nil)
	err = store.Commit(context.Background(), models.Session{Token: "t", UserID: "u", Role: models.RoleUser})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_Read_NoToken(t *testing.T) {
	_, store, _ := newStores(t)
	ctx := context.Background()

	_, err := store.Read(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.CommitProvisional(ctx, "a@b.com", models.RoleUser))
	_, err = store.Read(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	role, err := store.Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)
}

func TestSessionStore_Read_CorruptRole(t *testing.T) {
	repo, store, _ := newStores(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, common.KeyToken, []byte("t")))
	require.NoError(t, repo.Set(ctx, common.KeyUserRole, []byte("root")))

	_, err := store.Read(ctx)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStore_Clear_KeepsDraft(t *testing.T) {
	repo, store, drafts := newStores(t)
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, models.Session{Token: "t", UserID: "u", Email: "a@b.com", Role: models.RoleUser}))
	require.NoError(t, drafts.Save(ctx, models.ProfileDraft{Name: "Amy"}))

	require.NoError(t, store.Clear(ctx))

	_, err := store.Read(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, common.KeySetupProgress)
}

func TestSessionStore_Email(t *testing.T) {
	_, store, _ := newStores(t)
	ctx := context.Background()

	got, err := store.Email(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.RememberEmail(ctx, "a@b.com"))
	got, err = store.Email(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got)
}

func TestSessionStore_CommitProvisional_RejectsUnknown(t *testing.T) {
	_, store, _ := newStores(t)
	require.ErrorIs(t, store.CommitProvisional(context.Background(), "a@b.com", "guest"), ErrInvalidSession)
}

func TestSessionStore_CommitProvisional_DropsLiveSession(t *testing.T) {
	repo, store, _ := newStores(t)
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, models.Session{Token: "tA", UserID: "uA", Email: "a@x.com", Role: models.RoleAdmin}))

	require.NoError(t, store.CommitProvisional(ctx, "b@x.com", models.RoleUser))

	_, err := store.Read(ctx)
	require.ErrorIs(t, err, ErrNoSession)
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, all, common.KeyToken)
	assert.NotContains(t, all, common.KeyUserID)
	assert.Equal(t, "b@x.com", string(all[common.KeyEmail]))
	assert.Equal(t, "user", string(all[common.KeyUserRole]))
}

func TestSessionStore_RememberEmail_DropsLiveSession(t *testing.T) {
	_, store, _ := newStores(t)
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, models.Session{Token: "tA", UserID: "uA", Email: "a@x.com", Role: models.RoleAdmin}))

	require.NoError(t, store.RememberEmail(ctx, "b@x.com"))

	_, err := store.Read(ctx)
	require.ErrorIs(t, err, ErrNoSession)
	role, err := store.Role(ctx)
	require.NoError(t, err)
	assert.Empty(t, role)
}

func TestUserIDFromToken(t *testing.T) {
	id, err := userIDFromToken(signedToken(t, jwt.MapClaims{"userId": "abc"}))
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = userIDFromToken(signedToken(t, jwt.MapClaims{"sub": "abc"}))
	require.ErrorIs(t, err, errNoUserIDClaim)

	_, err = userIDFromToken("a.b")
	require.Error(t, err)
}
