package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapmatch/snapmatch/internal/domain/photo"
)

// PhotoRepository implements photo.Repository.
type PhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

func (r *PhotoRepository) Create(ctx context.Context, p *photo.Photo) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO photos (photo_id, request_id, photographer_id, client_id, artifact_reference, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, p.PhotoID, p.RequestID, p.PhotographerID, p.ClientID, p.ArtifactReference, p.CreatedAt)
	return err
}
