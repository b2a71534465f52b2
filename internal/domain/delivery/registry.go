package delivery

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_delivery.go -package=mocks . Registry,Router

import "github.com/google/uuid"

// Registry tracks which live connections currently represent which party.
// A party may hold zero or many connections at once.
type Registry interface {
	// Join registers a connection under its party id. Idempotent.
	Join(conn *Conn)

	// Leave removes exactly the named handle, wherever it is registered.
	// Unknown or already-removed handles are a no-op.
	Leave(handle string)

	// Lookup returns the live connections for a party; never blocks on I/O.
	Lookup(partyID uuid.UUID) []*Conn

	// Snapshot returns every live connection system-wide.
	Snapshot() []*Conn
}

// Router delivers a state-change event to a target party. Delivery is
// best-effort notification on top of the committed ledger record: it never
// blocks the caller's transition and never errors on zero recipients.
type Router interface {
	Notify(targetPartyID uuid.UUID, event *Event)
}
