package party

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_party.go -package=mocks . Directory,Verifier

import (
	"context"

	"github.com/google/uuid"
)

// Directory defines read access to the photographer directory.
type Directory interface {
	GetByPartyID(ctx context.Context, partyID uuid.UUID) (*Photographer, error)
}

// Verifier resolves an access token to a verified identity. Token issuance
// and validation live in the external identity service.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
