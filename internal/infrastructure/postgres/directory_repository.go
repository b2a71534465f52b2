package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapmatch/snapmatch/internal/domain/party"
)

// DirectoryRepository implements party.Directory.
type DirectoryRepository struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepository(pool *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

func (r *DirectoryRepository) GetByPartyID(ctx context.Context, partyID uuid.UUID) (*party.Photographer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, photographer_id, party_id, display_name, created_at
		FROM photographers
		WHERE photographer_id=$1 OR party_id=$1
		LIMIT 1
	`, partyID)

	var p party.Photographer
	if err := row.Scan(&p.ID, &p.PhotographerID, &p.PartyID, &p.DisplayName, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
