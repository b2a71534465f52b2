package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

type requestCreateBody struct {
	PhotographerID    string `json:"photographer_id"`
	ClientDisplayName string `json:"client_display_name,omitempty"`
}

type requestCompleteBody struct {
	ArtifactReference string `json:"artifact_reference"`
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var body requestCreateBody
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	photographerID, err := uuid.Parse(body.PhotographerID)
	if err != nil || photographerID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid photographer_id")
		return
	}
	actor := actorFromIdentity(identityFromContext(r.Context()))
	req, err := s.brokerSvc.Create(r.Context(), actor, photographerID, body.ClientDisplayName)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	actor := actorFromIdentity(identityFromContext(r.Context()))
	reqs, err := s.brokerSvc.List(r.Context(), actor, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": reqs})
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	actor := actorFromIdentity(identityFromContext(r.Context()))
	req, err := s.brokerSvc.Get(r.Context(), id, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) acceptRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	actor := actorFromIdentity(identityFromContext(r.Context()))
	req, err := s.brokerSvc.Accept(r.Context(), id, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	actor := actorFromIdentity(identityFromContext(r.Context()))
	req, err := s.brokerSvc.Reject(r.Context(), id, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) completeRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	var body requestCompleteBody
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if body.ArtifactReference == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artifact_reference is required")
		return
	}
	actor := actorFromIdentity(identityFromContext(r.Context()))
	req, err := s.brokerSvc.Complete(r.Context(), id, body.ArtifactReference, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) cancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	actor := actorFromIdentity(identityFromContext(r.Context()))
	req, err := s.brokerSvc.Cancel(r.Context(), id, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}
