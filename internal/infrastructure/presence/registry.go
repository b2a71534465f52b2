package presence

import (
	"sync"

	"github.com/google/uuid"

	"github.com/snapmatch/snapmatch/internal/domain/delivery"
)

// Registry is the in-memory presence registry: party id → set of live
// connections. Entries are removed as soon as their handle set drains, so
// holding a key implies at least one live connection.
type Registry struct {
	mu       sync.RWMutex
	byParty  map[uuid.UUID]map[string]*delivery.Conn
	byHandle map[string]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		byParty:  make(map[uuid.UUID]map[string]*delivery.Conn),
		byHandle: make(map[string]uuid.UUID),
	}
}

func (r *Registry) Join(conn *delivery.Conn) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byParty[conn.PartyID]
	if !ok {
		set = make(map[string]*delivery.Conn)
		r.byParty[conn.PartyID] = set
	}
	set[conn.Handle] = conn
	r.byHandle[conn.Handle] = conn.PartyID
}

// Leave removes the exact handle it is given. Keying the removal by handle
// means a reconnect that raced this disconnect keeps its own, newer handle.
func (r *Registry) Leave(handle string) {
	r.mu.Lock()
	partyID, ok := r.byHandle[handle]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byHandle, handle)
	set := r.byParty[partyID]
	conn := set[handle]
	delete(set, handle)
	if len(set) == 0 {
		delete(r.byParty, partyID)
	}
	r.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (r *Registry) Lookup(partyID uuid.UUID) []*delivery.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byParty[partyID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*delivery.Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Snapshot() []*delivery.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*delivery.Conn, 0, len(r.byHandle))
	for _, set := range r.byParty {
		for _, c := range set {
			out = append(out, c)
		}
	}
	return out
}

// PartyCount returns the number of parties with at least one connection.
func (r *Registry) PartyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byParty)
}

// ConnCount returns the number of live connections.
func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHandle)
}
