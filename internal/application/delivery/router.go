package delivery

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/snapmatch/snapmatch/internal/domain/delivery"
)

// Router delivers events through three layers, stopping at the first that
// reaches a live recipient:
//
//  1. direct delivery to the party's current handle set
//  2. a registry re-scan, covering a reconnect that raced the first lookup
//  3. tagged broadcast to every live connection, with the target embedded in
//     the event so non-targets discard it
//
// The broadcast layer costs O(total connections) and exists only as a
// liveness backstop. A total miss is recorded for observability, never
// surfaced to the caller; counterparts recover via the state read endpoint.
type Router struct {
	registry delivery.Registry
	logger   zerolog.Logger
	misses   atomic.Int64
}

func NewRouter(registry delivery.Registry, logger zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		logger:   logger.With().Str("service", "delivery").Logger(),
	}
}

func (r *Router) Notify(targetPartyID uuid.UUID, event *delivery.Event) {
	if event == nil {
		return
	}
	event.TargetPartyID = targetPartyID

	if r.sendDirect(targetPartyID, event) {
		return
	}
	// Re-scan: a reconnect may have landed between the first lookup and now.
	if r.sendDirect(targetPartyID, event) {
		r.logger.Debug().
			Str("request_id", event.RequestID.String()).
			Str("target", targetPartyID.String()).
			Msg("event delivered on registry re-scan")
		return
	}
	if r.broadcast(event) {
		r.logger.Debug().
			Str("request_id", event.RequestID.String()).
			Str("target", targetPartyID.String()).
			Msg("event delivered via tagged broadcast")
		return
	}

	r.misses.Add(1)
	r.logger.Warn().
		Str("request_id", event.RequestID.String()).
		Str("event", string(event.Type)).
		Str("target", targetPartyID.String()).
		Msg("no live recipient for event")
}

// Misses returns the number of events that found zero recipients at all
// three layers.
func (r *Router) Misses() int64 {
	return r.misses.Load()
}

func (r *Router) sendDirect(targetPartyID uuid.UUID, event *delivery.Event) bool {
	delivered := false
	for _, conn := range r.registry.Lookup(targetPartyID) {
		if conn.TrySend(event) {
			delivered = true
		}
	}
	return delivered
}

// broadcast enqueues the tagged event on every live connection; transports
// discard events not addressed to their party. Only sends that reached a
// connection of the target party count as delivery.
func (r *Router) broadcast(event *delivery.Event) bool {
	delivered := false
	for _, conn := range r.registry.Snapshot() {
		if !conn.TrySend(event) {
			continue
		}
		if conn.PartyID == event.TargetPartyID {
			delivered = true
		}
	}
	return delivered
}
