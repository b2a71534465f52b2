package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapmatch/snapmatch/internal/domain/request"
)

// RequestRepository implements request.Repository.
type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

const requestColumns = `id, request_id, client_id, client_display_name, photographer_id, state, artifact_reference, created_at, updated_at`

func (r *RequestRepository) Create(ctx context.Context, req *request.PhotoRequest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO photo_requests
		(request_id, client_id, client_display_name, photographer_id, state, artifact_reference, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, req.RequestID, req.ClientID, req.ClientDisplayName, req.PhotographerID, req.State, req.ArtifactReference, req.CreatedAt, req.UpdatedAt)
	if isUniqueViolation(err) {
		// The partial unique index on active pairs rejected the insert: a
		// racing create for the same pair already committed.
		return request.ErrConflict
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *RequestRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*request.PhotoRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM photo_requests WHERE request_id=$1
	`, requestID)
	return scanRequest(row)
}

func (r *RequestRepository) FindActiveByPair(ctx context.Context, clientID, photographerID uuid.UUID) (*request.PhotoRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM photo_requests
		WHERE client_id=$1 AND photographer_id=$2 AND state IN ('PENDING','ACCEPTED')
		ORDER BY created_at DESC LIMIT 1
	`, clientID, photographerID)
	return scanRequest(row)
}

// UpdateState commits a transition only when the stored state still matches
// from. The conditional update is what serializes racing writers: exactly
// one of them observes a row change.
func (r *RequestRepository) UpdateState(ctx context.Context, requestID uuid.UUID, from, to request.State, artifactReference *string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE photo_requests
		SET state=$1, artifact_reference=COALESCE($2, artifact_reference), updated_at=$3
		WHERE request_id=$4 AND state=$5
	`, to, artifactReference, time.Now().UTC(), requestID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RequestRepository) ListByParty(ctx context.Context, partyID uuid.UUID, limit, offset int) ([]*request.PhotoRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM photo_requests
		WHERE client_id=$1 OR photographer_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, partyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *RequestRepository) ListExpiredPending(ctx context.Context, olderThan time.Time, limit int) ([]*request.PhotoRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM photo_requests
		WHERE state='PENDING' AND created_at < $1
		ORDER BY created_at ASC LIMIT $2
	`, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]*request.PhotoRequest, error) {
	var out []*request.PhotoRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*request.PhotoRequest, error) {
	var req request.PhotoRequest
	if err := row.Scan(&req.ID, &req.RequestID, &req.ClientID, &req.ClientDisplayName, &req.PhotographerID, &req.State, &req.ArtifactReference, &req.CreatedAt, &req.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}
