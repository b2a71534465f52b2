package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appBroker "github.com/snapmatch/snapmatch/internal/application/broker"
	"github.com/snapmatch/snapmatch/internal/domain/delivery"
	"github.com/snapmatch/snapmatch/internal/domain/party"
	"github.com/snapmatch/snapmatch/internal/domain/request"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	brokerSvc *appBroker.Service
	registry  delivery.Registry
	verifier  party.Verifier
	logger    zerolog.Logger
}

func NewServer(
	brokerSvc *appBroker.Service,
	registry delivery.Registry,
	verifier party.Verifier,
	logger zerolog.Logger,
) *Server {
	return &Server{
		brokerSvc: brokerSvc,
		registry:  registry,
		verifier:  verifier,
		logger:    logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Use(s.requireAuth)

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", s.createRequest)
				r.Get("/", s.listRequests)
				r.Get("/{requestId}", s.getRequest)
				r.Post("/{requestId}/accept", s.acceptRequest)
				r.Post("/{requestId}/reject", s.rejectRequest)
				r.Post("/{requestId}/complete", s.completeRequest)
				r.Post("/{requestId}/cancel", s.cancelRequest)
			})
		})

		// The stream outlives the request timeout, so it sits outside the
		// timeout group.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/events/stream", s.eventStream)
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondDomainError maps the request error taxonomy onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, request.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, request.ErrForbidden):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, request.ErrInvalidState):
		respondError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, request.ErrConflict):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
