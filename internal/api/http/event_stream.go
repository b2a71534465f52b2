package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/snapmatch/snapmatch/internal/domain/delivery"
)

// eventStream serves the SSE transport. Each connection gets its own handle
// in the presence registry; tagged broadcast events for other parties are
// discarded here rather than delivered.
func (s *Server) eventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}

	id := identityFromContext(r.Context())
	conn := delivery.NewConn(id.PartyID)
	s.registry.Join(conn)
	defer s.registry.Leave(conn.Handle)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Send an initial comment to flush headers and keep the connection alive.
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	s.logger.Debug().
		Str("handle", conn.Handle).
		Str("party_id", id.PartyID.String()).
		Msg("event stream opened")

	ctx := r.Context()
	for {
		select {
		case ev := <-conn.Events:
			if ev == nil {
				return
			}
			if ev.TargetPartyID != id.PartyID {
				continue
			}
			s.writeEvent(w, flusher, ev)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, flusher http.Flusher, ev *delivery.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal stream event")
		return
	}
	_, _ = w.Write([]byte("event: "))
	_, _ = w.Write([]byte(ev.Type))
	_, _ = w.Write([]byte("\ndata: "))
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n\n"))
	flusher.Flush()
}
