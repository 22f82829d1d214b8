// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/esc-ranker/internal/model"
)

// UserRepository persists account records.
type UserRepository interface {
	// Exists reports whether a user with the username is already registered.
	Exists(ctx context.Context, username string) (bool, error)
	// Create inserts a new user. Returns errs.ErrAlreadyExists on a
	// username collision (the DB unique constraint backstops the
	// service-level existence check).
	Create(ctx context.Context, u *model.User) error
	// GetByUsername loads a user by username, errs.ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
