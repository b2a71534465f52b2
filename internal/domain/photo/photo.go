package photo

import (
	"time"

	"github.com/google/uuid"
)

// Photo records a captured artifact for a completed request. The bytes live
// in the external blob store; ArtifactReference points at them.
type Photo struct {
	ID                int64     `json:"id"`
	PhotoID           uuid.UUID `json:"photoId"`
	RequestID         uuid.UUID `json:"requestId"`
	PhotographerID    uuid.UUID `json:"photographerId"`
	ClientID          uuid.UUID `json:"clientId"`
	ArtifactReference string    `json:"artifactReference"`
	CreatedAt         time.Time `json:"createdAt"`
}

// New creates a photo record for a completed request.
func New(requestID, photographerID, clientID uuid.UUID, artifactReference string) *Photo {
	return &Photo{
		PhotoID:           uuid.New(),
		RequestID:         requestID,
		PhotographerID:    photographerID,
		ClientID:          clientID,
		ArtifactReference: artifactReference,
		CreatedAt:         time.Now().UTC(),
	}
}
