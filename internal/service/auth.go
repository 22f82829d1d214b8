// Package service contains application services for authentication and rankings.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/esc-ranker/internal/crypto"
	"github.com/and161185/esc-ranker/internal/errs"
	"github.com/and161185/esc-ranker/internal/model"
	"github.com/and161185/esc-ranker/internal/repository"
)

// TokenIssuer mints signed bearer tokens. Implemented by token.Issuer.
type TokenIssuer interface {
	Issue(userID uuid.UUID, username string) (string, time.Time, error)
}

// RegisterInput carries registration fields. Password is hashed before it
// reaches the store and is never logged.
type RegisterInput struct {
	Username      string
	Password      string
	Email         string
	ProfilePicURL string
	Description   string
}

// AuthService defines credential registration and login.
type AuthService interface {
	// Register creates a new user, errs.ErrAlreadyExists if the username is taken.
	Register(ctx context.Context, in RegisterInput) (userID string, err error)
	// Login authenticates and mints a token. Unknown username and wrong
	// password both yield errs.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (model.Session, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	issuer TokenIssuer
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, issuer TokenIssuer) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, issuer: issuer}
}

// Register checks username availability, hashes the password and persists
// the user. Exists-then-create is two statements; the unique constraint in
// the store backstops concurrent registrations of the same username.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (string, error) {
	if in.Username == "" || in.Password == "" {
		return "", errors.New("empty username/password")
	}

	exists, err := s.users.Exists(ctx, in.Username)
	if err != nil {
		return "", fmt.Errorf("check username: %w", err)
	}
	if exists {
		return "", errs.ErrAlreadyExists
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	hash, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return "", err
	}

	u := &model.User{
		ID:            uid,
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  hash,
		ProfilePicURL: in.ProfilePicURL,
		Description:   in.Description,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// Login looks up the user and verifies the password. Lookup failure and
// hash mismatch collapse into one sentinel so the response never reveals
// whether the username exists.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword(u.PasswordHash, password) {
		return model.Session{}, errs.ErrInvalidCredentials
	}

	signed, exp, err := s.issuer.Issue(u.ID, u.Username)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{
		Token:     signed,
		ExpiresAt: exp,
		UserID:    u.ID,
		Username:  u.Username,
	}, nil
}
