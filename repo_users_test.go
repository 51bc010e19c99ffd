package auth_test

import (
	"context"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/go-auth"
)

func newUsersStore(t *testing.T) auth.Users {
	t.Helper()

	db, err := auth.OpenSQLiteDB("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, auth.CreateUsersTable(context.Background(), db))

	return auth.NewUsersRepository(db)
}

func seedUser(t *testing.T, store auth.Users, email string) *auth.User {
	t.Helper()

	id, err := hashid.NewUUID(email)
	require.NoError(t, err)

	user, err := store.Create(context.Background(), &auth.User{
		ID:           id,
		Email:        email,
		Role:         auth.RoleStudent,
		PasswordHash: "stored-hash",
	})
	require.NoError(t, err)
	return user
}

func TestUsersRepository_GetByIdentifier(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite backed test in short mode")
	}

	ctx := context.Background()
	store := newUsersStore(t)
	user := seedUser(t, store, "grace@campuskit.dev")

	t.Run("by email", func(t *testing.T) {
		found, err := store.GetByIdentifier(ctx, "grace@campuskit.dev")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("by id", func(t *testing.T) {
		found, err := store.GetByIdentifier(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "grace@campuskit.dev", found.Email)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		found, err := store.GetByIdentifier(ctx, "  grace@campuskit.dev  ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := store.GetByIdentifier(ctx, "nobody@campuskit.dev")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUsersRepository_Create_Defaults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite backed test in short mode")
	}

	ctx := context.Background()
	store := newUsersStore(t)

	id, err := hashid.NewUUID("ada@campuskit.dev")
	require.NoError(t, err)

	user, err := store.Create(ctx, &auth.User{
		ID:    id,
		Email: "ada@campuskit.dev",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, auth.RoleGuest, user.Role)
}

func TestUsersRepository_LoginTracking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite backed test in short mode")
	}

	ctx := context.Background()
	store := newUsersStore(t)
	user := seedUser(t, store, "grace@campuskit.dev")

	require.NoError(t, store.TrackAttemptedLogin(ctx, user))
	require.NoError(t, store.TrackAttemptedLogin(ctx, &auth.User{ID: user.ID, LoginAttempts: 1}))

	stored, err := store.GetByIdentifier(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.LoginAttempts)
	assert.NotNil(t, stored.LoginAttemptAt)

	require.NoError(t, store.TrackSuccessfulLogin(ctx, stored))

	stored, err = store.GetByIdentifier(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LoginAttempts)
	assert.Nil(t, stored.LoginAttemptAt)
	assert.NotNil(t, stored.LoggedInAt)
}

func TestUsersRepository_ResetPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite backed test in short mode")
	}

	ctx := context.Background()
	store := newUsersStore(t)
	user := seedUser(t, store, "grace@campuskit.dev")
	require.False(t, user.EmailValidated)

	require.NoError(t, store.ResetPassword(ctx, user.ID, "rotated-hash"))

	stored, err := store.GetByIdentifier(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "rotated-hash", stored.PasswordHash)
	// redeeming a mailed token proves mailbox ownership
	assert.True(t, stored.EmailValidated)
}
