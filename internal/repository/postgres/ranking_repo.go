package postgres

import (
	"context"
	"errors"

	"github.com/and161185/esc-ranker/internal/errs"
	"github.com/and161185/esc-ranker/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// RankingRepo implements RankingRepository using PostgreSQL.
type RankingRepo struct{ db *DB }

// NewRankingRepo constructs a ranking repository.
func NewRankingRepo(db *DB) *RankingRepo { return &RankingRepo{db: db} }

// Create inserts a ranking and reads back the store-assigned updated_at.
func (r *RankingRepo) Create(ctx context.Context, rk *model.Ranking) error {
	const q = `
INSERT INTO rankings (id, owner_id, name, description, year, ranking_string)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING updated_at`
	return r.db.Pool.
		QueryRow(ctx, q, rk.ID, rk.OwnerID, rk.Name, rk.Description, rk.Year, rk.RankingString).
		Scan(&rk.UpdatedAt)
}

// ListByOwner returns the owner's rankings ordered by updated_at DESC.
func (r *RankingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Ranking, error) {
	const q = `
SELECT id, owner_id, name, description, year, ranking_string, updated_at
FROM rankings
WHERE owner_id=$1
ORDER BY updated_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ranking
	for rows.Next() {
		var rk model.Ranking
		if err = rows.Scan(&rk.ID, &rk.OwnerID, &rk.Name, &rk.Description, &rk.Year, &rk.RankingString, &rk.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rk)
	}
	return out, rows.Err()
}

// GetByID selects a ranking by id alone. Any authenticated user may fetch
// any ranking by id; only list and mutations are owner-scoped.
func (r *RankingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Ranking, error) {
	const q = `
SELECT id, owner_id, name, description, year, ranking_string, updated_at
FROM rankings WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var rk model.Ranking
	if err := row.Scan(&rk.ID, &rk.OwnerID, &rk.Name, &rk.Description, &rk.Year, &rk.RankingString, &rk.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &rk, nil
}

// Update rewrites the mutable fields. The owner_id predicate is the
// ownership check: a foreign ranking matches no row.
func (r *RankingRepo) Update(ctx context.Context, id, ownerID uuid.UUID, upd model.RankingUpdate) error {
	const q = `
UPDATE rankings
SET name=$3, description=$4, ranking_string=$5, updated_at=NOW()
WHERE id=$1 AND owner_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerID, upd.Name, upd.Description, upd.RankingString)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the ranking with the same (id, owner_id) match semantics.
func (r *RankingRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	const q = `DELETE FROM rankings WHERE id=$1 AND owner_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
