package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/snapmatch/snapmatch/internal/domain/delivery"
	"github.com/snapmatch/snapmatch/internal/domain/party"
	"github.com/snapmatch/snapmatch/internal/domain/photo"
	"github.com/snapmatch/snapmatch/internal/domain/request"
)

// Actor describes an authenticated actor driving a request transition.
type Actor struct {
	PartyID     uuid.UUID
	Role        party.Role
	DisplayName string
}

// System is the internal actor used by the expiry supervisor.
var System = Actor{Role: party.RoleSystem}

func (a Actor) IsSystem() bool {
	return a.Role == party.RoleSystem
}

func (a Actor) String() string {
	if a.IsSystem() {
		return "system"
	}
	return strings.ToLower(string(a.Role)) + ":" + a.PartyID.String()
}

// Service owns the photo request state machine. Transition legality is
// checked in memory for caller-correctable errors and enforced again by the
// repository's compare-and-set, so concurrent actors cannot both commit a
// terminal transition. The ledger write always commits before delivery is
// attempted; a delivery miss never rolls a transition back.
type Service struct {
	requests  request.Repository
	directory party.Directory
	photos    photo.Repository
	router    delivery.Router
	expiry    time.Duration
	logger    zerolog.Logger
}

// NewService creates a request broker.
func NewService(
	requests request.Repository,
	directory party.Directory,
	photos photo.Repository,
	router delivery.Router,
	expiry time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		requests:  requests,
		directory: directory,
		photos:    photos,
		router:    router,
		expiry:    expiry,
		logger:    logger.With().Str("service", "broker").Logger(),
	}
}

// Create validates the photographer against the directory, resolves any
// existing active request for the pair, persists a new PENDING record and
// notifies the photographer's presence group.
func (s *Service) Create(ctx context.Context, actor Actor, photographerID uuid.UUID, clientDisplayName string) (*request.PhotoRequest, error) {
	if actor.Role != party.RoleClient {
		return nil, request.ErrForbidden
	}
	if photographerID == uuid.Nil {
		return nil, fmt.Errorf("photographer_id is required")
	}

	profile, err := s.directory.GetByPartyID(ctx, photographerID)
	if err != nil {
		return nil, fmt.Errorf("resolve photographer: %w", err)
	}
	if profile == nil {
		return nil, request.ErrNotFound
	}

	existing, err := s.requests.FindActiveByPair(ctx, actor.PartyID, photographerID)
	if err != nil {
		return nil, fmt.Errorf("check active request: %w", err)
	}
	if existing != nil {
		// Accepted requests have no cancellation path, so only a stale
		// PENDING request can be superseded; an accepted session blocks the
		// pair until it completes.
		if existing.State != request.StatePending || !existing.IsStale(s.expiry, time.Now().UTC()) {
			return nil, request.ErrConflict
		}
		// Stale pending request: supersede it before inserting the new one.
		if _, err := s.Cancel(ctx, existing.RequestID, System); err != nil {
			if !errors.Is(err, request.ErrInvalidState) {
				return nil, fmt.Errorf("supersede stale request: %w", err)
			}
			// Lost a race to another terminal transition; the pair slot is
			// free either way.
		}
	}

	displayName := strings.TrimSpace(clientDisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(actor.DisplayName)
	}

	req := request.New(actor.PartyID, photographerID, displayName)
	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, request.ErrConflict) {
			// A racing create for the pair won the insert; the ledger's
			// unique constraint, not the read above, is the authority.
			return nil, request.ErrConflict
		}
		return nil, fmt.Errorf("persist request: %w", err)
	}

	s.logger.Info().
		Str("request_id", req.RequestID.String()).
		Str("client_id", req.ClientID.String()).
		Str("photographer_id", req.PhotographerID.String()).
		Msg("photo request created")

	s.notify(req.PhotographerID, delivery.EventNewRequest, req)
	return req, nil
}

// Accept moves a PENDING request to ACCEPTED and notifies the client.
func (s *Service) Accept(ctx context.Context, requestID uuid.UUID, actor Actor) (*request.PhotoRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.Accept(actor.PartyID); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, req, request.StatePending, request.StateAccepted, nil); err != nil {
		return nil, err
	}
	s.notify(req.ClientID, delivery.EventAccepted, req)
	return req, nil
}

// Reject moves a PENDING request to REJECTED and notifies the client.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, actor Actor) (*request.PhotoRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.Reject(actor.PartyID); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, req, request.StatePending, request.StateRejected, nil); err != nil {
		return nil, err
	}
	s.notify(req.ClientID, delivery.EventRejected, req)
	return req, nil
}

// Complete moves an ACCEPTED request to COMPLETED with the captured
// artifact, records the photo, and notifies both parties.
func (s *Service) Complete(ctx context.Context, requestID uuid.UUID, artifactReference string, actor Actor) (*request.PhotoRequest, error) {
	artifactReference = strings.TrimSpace(artifactReference)
	if artifactReference == "" {
		return nil, fmt.Errorf("artifact_reference is required")
	}
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.Complete(actor.PartyID, artifactReference); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, req, request.StateAccepted, request.StateCompleted, req.ArtifactReference); err != nil {
		return nil, err
	}

	// The photo record is supplementary to the committed transition; a
	// failure here is logged, not rolled back.
	p := photo.New(req.RequestID, req.PhotographerID, req.ClientID, artifactReference)
	if err := s.photos.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).
			Str("request_id", req.RequestID.String()).
			Msg("failed to record photo artifact")
	}

	s.notify(req.ClientID, delivery.EventCompleted, req)
	s.notify(req.PhotographerID, delivery.EventCompleted, req)
	return req, nil
}

// Cancel moves a PENDING request to CANCELLED and notifies the photographer.
// The owning client or the system actor may cancel.
func (s *Service) Cancel(ctx context.Context, requestID uuid.UUID, actor Actor) (*request.PhotoRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.Cancel(actor.PartyID, actor.Role); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, req, request.StatePending, request.StateCancelled, nil); err != nil {
		return nil, err
	}
	if actor.IsSystem() {
		s.logger.Info().
			Str("request_id", req.RequestID.String()).
			Msg("stale pending request cancelled")
	}
	s.notify(req.PhotographerID, delivery.EventCancelled, req)
	return req, nil
}

// Get is the synchronous fallback state read for parties that missed a push.
func (s *Service) Get(ctx context.Context, requestID uuid.UUID, actor Actor) (*request.PhotoRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsSystem() && !req.IsParty(actor.PartyID) {
		return nil, request.ErrForbidden
	}
	return req, nil
}

// List returns requests where the actor is client or photographer.
func (s *Service) List(ctx context.Context, actor Actor, limit, offset int) ([]*request.PhotoRequest, error) {
	return s.requests.ListByParty(ctx, actor.PartyID, limit, offset)
}

func (s *Service) load(ctx context.Context, requestID uuid.UUID) (*request.PhotoRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return nil, request.ErrNotFound
	}
	return req, nil
}

// commit performs the compare-and-set ledger write. A lost race reloads the
// record so the caller sees the state that beat it.
func (s *Service) commit(ctx context.Context, req *request.PhotoRequest, from, to request.State, artifact *string) error {
	ok, err := s.requests.UpdateState(ctx, req.RequestID, from, to, artifact)
	if err != nil {
		return fmt.Errorf("persist transition: %w", err)
	}
	if !ok {
		if current, loadErr := s.requests.GetByID(ctx, req.RequestID); loadErr == nil && current != nil {
			req.State = current.State
			req.ArtifactReference = current.ArtifactReference
			req.UpdatedAt = current.UpdatedAt
		}
		return request.ErrInvalidState
	}
	return nil
}

// notify is fire-and-forget: the router's sends never block, so the actor's
// latency is independent of whether the counterpart is reachable.
func (s *Service) notify(target uuid.UUID, eventType delivery.EventType, req *request.PhotoRequest) {
	payload, err := json.Marshal(eventPayload{
		RequestID:         req.RequestID,
		State:             req.State,
		ClientID:          req.ClientID,
		ClientDisplayName: req.ClientDisplayName,
		PhotographerID:    req.PhotographerID,
		ArtifactReference: req.ArtifactReference,
		UpdatedAt:         req.UpdatedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal event payload")
		return
	}
	s.router.Notify(target, delivery.NewEvent(req.RequestID, eventType, target, payload))
}

type eventPayload struct {
	RequestID         uuid.UUID     `json:"request_id"`
	State             request.State `json:"state"`
	ClientID          uuid.UUID     `json:"client_id"`
	ClientDisplayName string        `json:"client_display_name,omitempty"`
	PhotographerID    uuid.UUID     `json:"photographer_id"`
	ArtifactReference *string       `json:"artifact_reference,omitempty"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
