package wsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	appBroker "github.com/snapmatch/snapmatch/internal/application/broker"
	"github.com/snapmatch/snapmatch/internal/domain/delivery"
	"github.com/snapmatch/snapmatch/internal/domain/party"
	"github.com/snapmatch/snapmatch/internal/domain/request"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
)

type identityContextKey struct{}

// Frame is the bidirectional websocket envelope. Client commands carry a
// request_id that is echoed back on the matching ack or error frame; pushed
// delivery events carry the photo request id instead.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type errorEnvelope struct {
	Error frameError `json:"error"`
}

type frameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createPayload struct {
	PhotographerID    string `json:"photographer_id"`
	ClientDisplayName string `json:"client_display_name,omitempty"`
}

type transitionPayload struct {
	RequestID         string `json:"request_id"`
	ArtifactReference string `json:"artifact_reference,omitempty"`
}

// Handler terminates websocket connections for clients and photographers.
type Handler struct {
	brokerSvc *appBroker.Service
	registry  delivery.Registry
	verifier  party.Verifier
	logger    zerolog.Logger
}

func NewHandler(
	brokerSvc *appBroker.Service,
	registry delivery.Registry,
	verifier party.Verifier,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		brokerSvc: brokerSvc,
		registry:  registry,
		verifier:  verifier,
		logger:    logger.With().Str("component", "ws").Logger(),
	}
}

// HTTPHandler authenticates the upgrade request and hands the connection to
// the frame loop. Identity is fixed at upgrade time; frames carry no tokens.
func (h *Handler) HTTPHandler() http.Handler {
	wsHandler := websocket.Handler(h.handleConn)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id, err := h.verifier.Verify(r.Context(), accessTokenFromRequest(r))
		if err != nil {
			h.logger.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket auth failed")
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, id)
		wsHandler.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessTokenFromRequest(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

type peer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newPeer(enc *json.Encoder) *peer {
	return &peer{enc: enc}
}

func (p *peer) writeFrame(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(frame)
}

func (h *Handler) handleConn(ws *websocket.Conn) {
	defer func() {
		_ = ws.Close()
	}()

	req := ws.Request()
	id, ok := req.Context().Value(identityContextKey{}).(*party.Identity)
	if !ok || id == nil {
		return
	}
	actor := appBroker.Actor{PartyID: id.PartyID, Role: id.Role, DisplayName: id.DisplayName}

	p := newPeer(json.NewEncoder(ws))
	conn := delivery.NewConn(id.PartyID)
	h.registry.Join(conn)
	defer h.registry.Leave(conn.Handle)

	h.logger.Info().
		Str("handle", conn.Handle).
		Str("party_id", id.PartyID.String()).
		Str("role", string(id.Role)).
		Msg("websocket connected")

	done := make(chan struct{})
	defer close(done)
	go h.pushEvents(p, conn, id.PartyID, done)

	decoder := json.NewDecoder(ws)
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeError(p, "", "INVALID_PARAM", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeError(p, frame.RequestID, "INVALID_PARAM", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeError(p, frame.RequestID, "RATE_LIMITED", "rate limit exceeded")
			return
		}

		ctx := req.Context()
		switch frame.Type {
		case "ping":
			_ = p.writeFrame(Frame{Type: "pong", RequestID: frame.RequestID})
		case "request.create":
			h.handleCreate(ctx, p, actor, frame)
		case "request.accept":
			h.handleTransition(ctx, p, actor, frame, h.brokerSvc.Accept)
		case "request.reject":
			h.handleTransition(ctx, p, actor, frame, h.brokerSvc.Reject)
		case "request.cancel":
			h.handleTransition(ctx, p, actor, frame, h.brokerSvc.Cancel)
		case "request.complete":
			h.handleComplete(ctx, p, actor, frame)
		case "request.get":
			h.handleTransition(ctx, p, actor, frame, h.brokerSvc.Get)
		default:
			_ = writeError(p, frame.RequestID, "INVALID_PARAM", "unsupported frame type")
		}
	}
}

// pushEvents drains the connection's delivery channel onto the wire. Tagged
// broadcast events for other parties are discarded here, never delivered.
func (h *Handler) pushEvents(p *peer, conn *delivery.Conn, partyID uuid.UUID, done <-chan struct{}) {
	for {
		select {
		case ev := <-conn.Events:
			if ev == nil {
				return
			}
			if ev.TargetPartyID != partyID {
				continue
			}
			if err := p.writeFrame(Frame{
				Type:      string(ev.Type),
				RequestID: ev.RequestID.String(),
				Payload:   ev.Payload,
			}); err != nil {
				h.logger.Debug().Err(err).
					Str("handle", conn.Handle).
					Msg("websocket push failed")
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) handleCreate(ctx context.Context, p *peer, actor appBroker.Actor, frame Frame) {
	var payload createPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, "INVALID_PARAM", "invalid create payload")
		return
	}
	photographerID, err := uuid.Parse(payload.PhotographerID)
	if err != nil || photographerID == uuid.Nil {
		_ = writeError(p, frame.RequestID, "INVALID_PARAM", "invalid photographer_id")
		return
	}
	req, err := h.brokerSvc.Create(ctx, actor, photographerID, payload.ClientDisplayName)
	if err != nil {
		writeDomainError(p, frame.RequestID, err)
		return
	}
	writeAck(p, frame.RequestID, req)
}

func (h *Handler) handleComplete(ctx context.Context, p *peer, actor appBroker.Actor, frame Frame) {
	var payload transitionPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, "INVALID_PARAM", "invalid complete payload")
		return
	}
	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		_ = writeError(p, frame.RequestID, "INVALID_PARAM", "invalid request_id")
		return
	}
	if strings.TrimSpace(payload.ArtifactReference) == "" {
		_ = writeError(p, frame.RequestID, "INVALID_PARAM", "artifact_reference is required")
		return
	}
	req, err := h.brokerSvc.Complete(ctx, requestID, payload.ArtifactReference, actor)
	if err != nil {
		writeDomainError(p, frame.RequestID, err)
		return
	}
	writeAck(p, frame.RequestID, req)
}

func (h *Handler) handleTransition(
	ctx context.Context,
	p *peer,
	actor appBroker.Actor,
	frame Frame,
	op func(context.Context, uuid.UUID, appBroker.Actor) (*request.PhotoRequest, error),
) {
	var payload transitionPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, "INVALID_PARAM", "invalid payload")
		return
	}
	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		_ = writeError(p, frame.RequestID, "INVALID_PARAM", "invalid request_id")
		return
	}
	req, err := op(ctx, requestID, actor)
	if err != nil {
		writeDomainError(p, frame.RequestID, err)
		return
	}
	writeAck(p, frame.RequestID, req)
}

func writeAck(p *peer, requestID string, req *request.PhotoRequest) {
	payload, err := json.Marshal(req)
	if err != nil {
		_ = writeError(p, requestID, "INTERNAL_ERROR", "failed to encode request")
		return
	}
	_ = p.writeFrame(Frame{Type: "ack", RequestID: requestID, Payload: payload})
}

func writeDomainError(p *peer, requestID string, err error) {
	switch {
	case errors.Is(err, request.ErrNotFound):
		_ = writeError(p, requestID, "NOT_FOUND", err.Error())
	case errors.Is(err, request.ErrForbidden):
		_ = writeError(p, requestID, "FORBIDDEN", err.Error())
	case errors.Is(err, request.ErrInvalidState):
		_ = writeError(p, requestID, "INVALID_STATE", err.Error())
	case errors.Is(err, request.ErrConflict):
		_ = writeError(p, requestID, "CONFLICT", err.Error())
	default:
		_ = writeError(p, requestID, "INTERNAL_ERROR", err.Error())
	}
}

func writeError(p *peer, requestID, code, message string) error {
	payload, err := json.Marshal(errorEnvelope{Error: frameError{Code: code, Message: message}})
	if err != nil {
		return err
	}
	return p.writeFrame(Frame{Type: "error", RequestID: requestID, Payload: payload})
}
