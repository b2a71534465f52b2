package request

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/snapmatch/snapmatch/internal/domain/party"
)

// State represents the lifecycle state of a photo request.
type State string

const (
	StatePending   State = "PENDING"
	StateAccepted  State = "ACCEPTED"
	StateCompleted State = "COMPLETED"
	StateRejected  State = "REJECTED"
	StateCancelled State = "CANCELLED"
)

var (
	ErrNotFound     = errors.New("photo request not found")
	ErrForbidden    = errors.New("actor not authorized for this request")
	ErrInvalidState = errors.New("invalid request state transition")
	ErrConflict     = errors.New("an active request already exists for this pair")
)

// PhotoRequest represents one client's ask for an immediate photo session
// with one photographer.
type PhotoRequest struct {
	ID                int64     `json:"id"`
	RequestID         uuid.UUID `json:"requestId"`
	ClientID          uuid.UUID `json:"clientId"`
	ClientDisplayName string    `json:"clientDisplayName,omitempty"`
	PhotographerID    uuid.UUID `json:"photographerId"`
	State             State     `json:"state"`
	ArtifactReference *string   `json:"artifactReference,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// New creates a pending photo request.
func New(clientID, photographerID uuid.UUID, clientDisplayName string) *PhotoRequest {
	now := time.Now().UTC()
	return &PhotoRequest{
		RequestID:         uuid.New(),
		ClientID:          clientID,
		ClientDisplayName: clientDisplayName,
		PhotographerID:    photographerID,
		State:             StatePending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CanTransitionTo validates a state transition. Terminal states allow none.
func (r *PhotoRequest) CanTransitionTo(target State) bool {
	transitions := map[State][]State{
		StatePending:   {StateAccepted, StateRejected, StateCancelled},
		StateAccepted:  {StateCompleted},
		StateCompleted: {},
		StateRejected:  {},
		StateCancelled: {},
	}
	for _, s := range transitions[r.State] {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transition is defined.
func (r *PhotoRequest) IsTerminal() bool {
	switch r.State {
	case StateCompleted, StateRejected, StateCancelled:
		return true
	}
	return false
}

// IsActive returns true while the request still occupies its
// (client, photographer) pair.
func (r *PhotoRequest) IsActive() bool {
	return r.State == StatePending || r.State == StateAccepted
}

// IsStale reports whether an active request has outlived the expiry
// threshold and may be superseded.
func (r *PhotoRequest) IsStale(threshold time.Duration, now time.Time) bool {
	return now.Sub(r.CreatedAt) >= threshold
}

// IsParty returns true if the given party id is the client or the
// photographer on this request.
func (r *PhotoRequest) IsParty(partyID uuid.UUID) bool {
	return r.ClientID == partyID || r.PhotographerID == partyID
}

// Accept moves the request to ACCEPTED. Only the named photographer may act.
func (r *PhotoRequest) Accept(actorID uuid.UUID) error {
	if actorID != r.PhotographerID {
		return ErrForbidden
	}
	if !r.CanTransitionTo(StateAccepted) {
		return ErrInvalidState
	}
	r.State = StateAccepted
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject moves the request to REJECTED. Only the named photographer may act.
func (r *PhotoRequest) Reject(actorID uuid.UUID) error {
	if actorID != r.PhotographerID {
		return ErrForbidden
	}
	if !r.CanTransitionTo(StateRejected) {
		return ErrInvalidState
	}
	r.State = StateRejected
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete moves the request to COMPLETED with the captured artifact.
func (r *PhotoRequest) Complete(actorID uuid.UUID, artifactReference string) error {
	if actorID != r.PhotographerID {
		return ErrForbidden
	}
	if !r.CanTransitionTo(StateCompleted) {
		return ErrInvalidState
	}
	r.State = StateCompleted
	r.ArtifactReference = &artifactReference
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel moves the request to CANCELLED. The owning client or the system
// (expiry supervisor) may act; once accepted there is no cancellation path.
func (r *PhotoRequest) Cancel(actorID uuid.UUID, actorRole party.Role) error {
	if actorRole != party.RoleSystem && actorID != r.ClientID {
		return ErrForbidden
	}
	if !r.CanTransitionTo(StateCancelled) {
		return ErrInvalidState
	}
	r.State = StateCancelled
	r.UpdatedAt = time.Now().UTC()
	return nil
}
