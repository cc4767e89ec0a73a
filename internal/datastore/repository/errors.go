package repository

import "github.com/zancompute/zanconfig/internal/errors"

const componentName = "repository"

var (
	// ErrClientNotFound is returned when no app details row has the given id.
	ErrClientNotFound = errors.NotFound(componentName, "client not found")

	// ErrUserNotFound is returned when no user matches a login.
	ErrUserNotFound = errors.NotFound(componentName, "user not found")
)
