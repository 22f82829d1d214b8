// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents an account. The password is stored only as a bcrypt hash.
type User struct {
	ID            uuid.UUID // PK
	Username      string    // unique, case-sensitive
	Email         string
	PasswordHash  string // bcrypt(password), never the plaintext
	ProfilePicURL string // optional profile field
	Description   string // optional profile field
	CreatedAt     time.Time
}

// Ranking is a user-owned ordered list for one contest year.
// RankingString is an opaque client payload; the server never parses it.
type Ranking struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID // FK -> users.id, sole authorization key for mutation
	Name          string
	Description   string
	Year          int
	RankingString string
	UpdatedAt     time.Time // refreshed by the store on each update
}

// NewRanking carries the caller-supplied fields for ranking creation.
type NewRanking struct {
	Name          string
	Description   string
	Year          int
	RankingString string
}

// RankingUpdate carries the mutable fields. Year is fixed at creation.
type RankingUpdate struct {
	Name          string
	Description   string
	RankingString string
}

// Session is the result of a successful login. Tokens are never persisted
// server-side; a new login is required after expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
	UserID    uuid.UUID
	Username  string
}
