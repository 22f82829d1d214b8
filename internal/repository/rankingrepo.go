package repository

import (
	"context"

	"github.com/and161185/esc-ranker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// RankingRepository persists rankings keyed by owner. Mutations match on
// (id, owner_id) so foreign rows are indistinguishable from absent ones.
type RankingRepository interface {
	// Create inserts a ranking and fills its store-assigned UpdatedAt.
	Create(ctx context.Context, r *model.Ranking) error
	// ListByOwner returns the owner's rankings, most recently updated first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Ranking, error)
	// GetByID loads a ranking by id alone, without an ownership filter.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Ranking, error)
	// Update rewrites the mutable fields and refreshes updated_at.
	// errs.ErrNotFound unless a row matched both id and ownerID.
	Update(ctx context.Context, id, ownerID uuid.UUID, upd model.RankingUpdate) error
	// Delete removes the ranking, with the same match semantics as Update.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
