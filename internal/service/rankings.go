package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/esc-ranker/internal/model"
	"github.com/and161185/esc-ranker/internal/repository"
)

// RankingService defines operations over user-owned rankings.
// Mutations carry the caller's identity as ownerID; the store matches rows
// on (id, owner_id), so a foreign ranking behaves like a missing one.
type RankingService interface {
	// Create stores a new ranking owned by ownerID.
	Create(ctx context.Context, ownerID uuid.UUID, in model.NewRanking) (*model.Ranking, error)
	// ListOwned returns the caller's rankings, newest update first.
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Ranking, error)
	// Get fetches a ranking by id. Not owner-scoped: any authenticated
	// user may read any ranking by id.
	Get(ctx context.Context, id uuid.UUID) (*model.Ranking, error)
	// Update rewrites the mutable fields of an owned ranking.
	Update(ctx context.Context, id, ownerID uuid.UUID, upd model.RankingUpdate) error
	// Delete removes an owned ranking.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

type RankingServiceImpl struct {
	repo repository.RankingRepository
}

// NewRankingService constructs RankingService.
func NewRankingService(repo repository.RankingRepository) *RankingServiceImpl {
	return &RankingServiceImpl{repo: repo}
}

// Create validates input and persists a new ranking. The ranking string is
// opaque: its internal format belongs to the client and is not parsed here.
func (s *RankingServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in model.NewRanking) (*model.Ranking, error) {
	if ownerID == uuid.Nil {
		return nil, errors.New("validation: empty ownerID")
	}
	if in.Name == "" {
		return nil, errors.New("validation: empty name")
	}
	if in.RankingString == "" {
		return nil, errors.New("validation: empty ranking string")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	rk := &model.Ranking{
		ID:            id,
		OwnerID:       ownerID,
		Name:          in.Name,
		Description:   in.Description,
		Year:          in.Year,
		RankingString: in.RankingString,
	}
	if err := s.repo.Create(ctx, rk); err != nil {
		return nil, err
	}
	return rk, nil
}

// ListOwned returns all rankings belonging to ownerID.
func (s *RankingServiceImpl) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Ranking, error) {
	if ownerID == uuid.Nil {
		return nil, errors.New("validation: empty ownerID")
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get fetches a single ranking by id without an ownership filter.
func (s *RankingServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Ranking, error) {
	if id == uuid.Nil {
		return nil, errors.New("validation: empty id")
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies the mutable fields to an owned ranking.
func (s *RankingServiceImpl) Update(ctx context.Context, id, ownerID uuid.UUID, upd model.RankingUpdate) error {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return errors.New("validation: empty id/ownerID")
	}
	if upd.Name == "" {
		return errors.New("validation: empty name")
	}
	if upd.RankingString == "" {
		return errors.New("validation: empty ranking string")
	}
	return s.repo.Update(ctx, id, ownerID, upd)
}

// Delete removes an owned ranking.
func (s *RankingServiceImpl) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return errors.New("validation: empty id/ownerID")
	}
	return s.repo.Delete(ctx, id, ownerID)
}
