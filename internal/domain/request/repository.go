package request

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for photo requests.
type Repository interface {
	Create(ctx context.Context, r *PhotoRequest) error
	GetByID(ctx context.Context, requestID uuid.UUID) (*PhotoRequest, error)

	// FindActiveByPair returns the PENDING or ACCEPTED request for the
	// (client, photographer) pair, or nil when none exists.
	FindActiveByPair(ctx context.Context, clientID, photographerID uuid.UUID) (*PhotoRequest, error)

	// UpdateState commits a transition only if the stored state still equals
	// from; it reports whether a row changed. This is the compare-and-set
	// that guarantees at most one terminal transition per request.
	UpdateState(ctx context.Context, requestID uuid.UUID, from, to State, artifactReference *string) (bool, error)

	ListByParty(ctx context.Context, partyID uuid.UUID, limit, offset int) ([]*PhotoRequest, error)
	ListExpiredPending(ctx context.Context, olderThan time.Time, limit int) ([]*PhotoRequest, error)
}
