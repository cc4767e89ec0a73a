package auth

import (
	"context"
	"strings"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/datastore/repository"
	"github.com/zancompute/zanconfig/internal/errors"
	"github.com/zancompute/zanconfig/internal/logger"
)

const componentName = "auth"

// ErrInvalidCredentials is returned for an unknown login or a wrong password;
// the two cases are not distinguished.
var ErrInvalidCredentials = errors.Newf("invalid username or password").
	Component(componentName).
	Category(errors.CategoryUnauthorized).
	Build()

// ErrUserExists is returned when registering a username or email that is
// already taken by any account.
var ErrUserExists = errors.Validation(componentName, "user already exists")

// ErrCurrentPasswordIncorrect is returned by ChangePassword when the supplied
// current password does not verify.
var ErrCurrentPasswordIncorrect = errors.Validation(componentName, "current password incorrect")

// Authenticator checks a login name and password.
type Authenticator struct {
	users repository.UserRepository
	log   logger.Logger
}

// NewAuthenticator creates an Authenticator backed by users.
func NewAuthenticator(users repository.UserRepository, log logger.Logger) *Authenticator {
	return &Authenticator{users: users, log: log.Module(componentName)}
}

// Authenticate resolves login as a username or email, case-insensitively, and
// verifies password against it.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (*entities.User, error) {
	login = strings.TrimSpace(login)
	user, err := a.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			a.log.Info("login rejected", logger.String("login", login), logger.String("reason", "unknown user"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !Verify(password, user.PasswordHash) {
		a.log.Info("login rejected", logger.String("login", login), logger.String("reason", "password mismatch"))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register creates an account with a hashed password. Neither the username nor
// the email may match an existing account's username or email.
func (a *Authenticator) Register(ctx context.Context, username, email, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, errors.Validation(componentName, "username, email and password are required")
	}
	for _, login := range []string{username, email} {
		_, err := a.users.FindByLogin(ctx, login)
		switch {
		case err == nil:
			return nil, ErrUserExists
		case !errors.Is(err, repository.ErrUserNotFound):
			return nil, err
		}
	}
	user := &entities.User{Username: username, Email: email, PasswordHash: HashPassword(password)}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	a.log.Info("user registered", logger.String("username", username))
	return user, nil
}

// UserForToken resolves a bearer token. Tokens are the account's username, as
// issued by the login endpoint, so emails never match.
func (a *Authenticator) UserForToken(ctx context.Context, token string) (*entities.User, error) {
	user, err := a.users.FindByUsername(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the username and email of the token's account. A
// blank value keeps the current one. The returned user carries the new
// username, which is also the new token.
func (a *Authenticator) UpdateProfile(ctx context.Context, token, username, email string) (*entities.User, error) {
	user, err := a.UserForToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(username); v != "" {
		username = v
	} else {
		username = user.Username
	}
	if v := strings.TrimSpace(email); v != "" {
		email = v
	} else {
		email = user.Email
	}
	for _, login := range []string{username, email} {
		other, err := a.users.FindByLogin(ctx, login)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, ErrUserExists
		case err != nil && !errors.Is(err, repository.ErrUserNotFound):
			return nil, err
		}
	}
	if err := a.users.UpdateProfile(ctx, user.ID, username, email); err != nil {
		return nil, err
	}
	a.log.Info("profile updated", logger.String("username", username), logger.Uint64("user_id", uint64(user.ID)))
	user.Username, user.Email = username, email
	return user, nil
}

// ChangePassword replaces the token's account password after verifying
// current against the stored one. The new password is stored hashed.
func (a *Authenticator) ChangePassword(ctx context.Context, token, current, next string) error {
	user, err := a.UserForToken(ctx, token)
	if err != nil {
		return err
	}
	if !Verify(current, user.PasswordHash) {
		return ErrCurrentPasswordIncorrect
	}
	if strings.TrimSpace(next) == "" {
		return errors.Validation(componentName, "new password is required")
	}
	if err := a.users.UpdatePassword(ctx, user.ID, HashPassword(next)); err != nil {
		return err
	}
	a.log.Info("password changed", logger.String("username", user.Username))
	return nil
}
