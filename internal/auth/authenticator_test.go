package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/datastore/repository"
	"github.com/zancompute/zanconfig/internal/datastore/schema"
	"github.com/zancompute/zanconfig/internal/errors"
	"github.com/zancompute/zanconfig/internal/testutil"
)

func setupAuthenticator(t *testing.T) (*Authenticator, repository.UserRepository) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	report := schema.NewManager(db, testutil.DiscardLogger()).Run(t.Context())
	require.NoError(t, report.Err(), "failed to create tables")

	users := repository.NewUserRepository(db)
	return NewAuthenticator(users, testutil.DiscardLogger()), users
}

func TestAuthenticator_Authenticate(t *testing.T) {
	auth, users := setupAuthenticator(t)
	ctx := t.Context()

	require.NoError(t, users.Create(ctx, &entities.User{Username: "hashed", Email: "hashed@example.com", PasswordHash: HashPassword("s3cret")}))
	require.NoError(t, users.Create(ctx, &entities.User{Username: "legacy", Email: "legacy@example.com", PasswordHash: "plain"}))

	tests := []struct {
		name     string
		login    string
		password string
		wantUser string
	}{
		{"hashed by username", "hashed", "s3cret", "hashed"},
		{"hashed by email any case", "HASHED@example.com", "s3cret", "hashed"},
		{"plaintext account", " Legacy ", "plain", "legacy"},
		{"wrong password", "hashed", "plain", ""},
		{"unknown user", "ghost", "s3cret", ""},
		{"blank login", "", "s3cret", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.Authenticate(ctx, tt.login, tt.password)
			if tt.wantUser == "" {
				require.ErrorIs(t, err, ErrInvalidCredentials)
				assert.ErrorIs(t, err, errors.ErrUnauthorized)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user.Username)
		})
	}
}

func TestAuthenticator_Register(t *testing.T) {
	auth, users := setupAuthenticator(t)
	ctx := t.Context()

	user, err := auth.Register(ctx, " newbie ", "newbie@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "newbie", user.Username)
	assert.NotZero(t, user.ID)

	stored, err := users.FindByLogin(ctx, "newbie")
	require.NoError(t, err)
	assert.Equal(t, HashPassword("pw"), stored.PasswordHash)

	_, err = auth.Authenticate(ctx, "newbie", "pw")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "NEWBIE", "other@example.com", "pw")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = auth.Register(ctx, "other", "newbie@example.com", "pw")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = auth.Register(ctx, "", "x@example.com", "pw")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

type failingUsers struct{}

func (failingUsers) FindByLogin(context.Context, string) (*entities.User, error) {
	return nil, errors.Store("repository", fmt.Errorf("connection refused"))
}

func (failingUsers) FindByUsername(context.Context, string) (*entities.User, error) {
	return nil, errors.Store("repository", fmt.Errorf("connection refused"))
}

func (failingUsers) Create(context.Context, *entities.User) error { return nil }

func (failingUsers) UpdateProfile(context.Context, uint, string, string) error { return nil }

func (failingUsers) UpdatePassword(context.Context, uint, string) error { return nil }

func TestAuthenticator_StoreFailure(t *testing.T) {
	t.Parallel()
	auth := NewAuthenticator(failingUsers{}, testutil.DiscardLogger())
	_, err := auth.Authenticate(t.Context(), "anyone", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, errors.ErrStore)

	_, err = auth.Register(t.Context(), "someone", "someone@example.com", "pw")
	assert.ErrorIs(t, err, errors.ErrStore)

	err = auth.ChangePassword(t.Context(), "someone", "pw", "new")
	assert.ErrorIs(t, err, errors.ErrStore)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticator_UserForToken(t *testing.T) {
	auth, users := setupAuthenticator(t)
	ctx := t.Context()
	require.NoError(t, users.Create(ctx, &entities.User{Username: "operator", Email: "ops@example.com", PasswordHash: "x"}))

	user, err := auth.UserForToken(ctx, "Operator")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", user.Email)

	// Only usernames are issued as tokens.
	_, err = auth.UserForToken(ctx, "ops@example.com")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.UserForToken(ctx, "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticator_UserForTokenPrefersUsername(t *testing.T) {
	auth, users := setupAuthenticator(t)
	ctx := t.Context()
	require.NoError(t, users.Create(ctx, &entities.User{Username: "older", Email: "shared", PasswordHash: "x"}))
	require.NoError(t, users.Create(ctx, &entities.User{Username: "shared", Email: "newer@example.com", PasswordHash: "y"}))

	user, err := auth.UserForToken(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "newer@example.com", user.Email)
}

func TestAuthenticator_UpdateProfile(t *testing.T) {
	auth, users := setupAuthenticator(t)
	ctx := t.Context()
	require.NoError(t, users.Create(ctx, &entities.User{Username: "operator", Email: "ops@example.com", PasswordHash: "x"}))
	require.NoError(t, users.Create(ctx, &entities.User{Username: "other", Email: "other@example.com", PasswordHash: "x"}))

	user, err := auth.UpdateProfile(ctx, "operator", "", " ops2@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "operator", user.Username, "blank username keeps the current one")
	assert.Equal(t, "ops2@example.com", user.Email)

	user, err = auth.UpdateProfile(ctx, "operator", "renamed", "")
	require.NoError(t, err)
	assert.Equal(t, "renamed", user.Username)

	_, err = auth.UserForToken(ctx, "operator")
	require.ErrorIs(t, err, ErrInvalidCredentials, "the old token stops working")
	stored, err := auth.UserForToken(ctx, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "ops2@example.com", stored.Email)

	_, err = auth.UpdateProfile(ctx, "renamed", "other", "")
	require.ErrorIs(t, err, ErrUserExists)
	_, err = auth.UpdateProfile(ctx, "renamed", "", "OTHER@example.com")
	require.ErrorIs(t, err, ErrUserExists)

	_, err = auth.UpdateProfile(ctx, "ghost", "x", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticator_ChangePassword(t *testing.T) {
	auth, users := setupAuthenticator(t)
	ctx := t.Context()
	require.NoError(t, users.Create(ctx, &entities.User{Username: "legacy", Email: "legacy@example.com", PasswordHash: "plain"}))

	err := auth.ChangePassword(ctx, "legacy", "wrong", "next")
	require.ErrorIs(t, err, ErrCurrentPasswordIncorrect)
	assert.ErrorIs(t, err, errors.ErrValidation)

	err = auth.ChangePassword(ctx, "legacy", "plain", "  ")
	require.ErrorIs(t, err, errors.ErrValidation)

	require.NoError(t, auth.ChangePassword(ctx, "legacy", " plain ", "next"))

	stored, err := users.FindByUsername(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, HashPassword("next"), stored.PasswordHash)

	_, err = auth.Authenticate(ctx, "legacy", "plain")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate(ctx, "legacy", "next")
	require.NoError(t, err)

	err = auth.ChangePassword(ctx, "ghost", "plain", "next")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
