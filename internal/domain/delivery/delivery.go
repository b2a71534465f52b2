package delivery

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a state-change notification pushed to a counterpart.
type EventType string

const (
	EventNewRequest EventType = "new_request"
	EventAccepted   EventType = "accepted"
	EventRejected   EventType = "rejected"
	EventCompleted  EventType = "completed"
	EventCancelled  EventType = "cancelled"
)

// Event is a state-change notification. TargetPartyID is always set;
// connections discard events not addressed to their party, which makes the
// tagged-broadcast fallback safe.
type Event struct {
	ID            uuid.UUID       `json:"id"`
	RequestID     uuid.UUID       `json:"requestId"`
	Type          EventType       `json:"type"`
	TargetPartyID uuid.UUID       `json:"targetPartyId"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NewEvent creates an event addressed to one party.
func NewEvent(requestID uuid.UUID, eventType EventType, targetPartyID uuid.UUID, payload json.RawMessage) *Event {
	return &Event{
		ID:            uuid.New(),
		RequestID:     requestID,
		Type:          eventType,
		TargetPartyID: targetPartyID,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

// Conn represents one live connection for a party. Created on join,
// destroyed on disconnect; owned exclusively by the presence registry.
type Conn struct {
	Handle        string
	PartyID       uuid.UUID
	EstablishedAt time.Time
	Events        chan *Event

	mu     sync.Mutex
	closed bool
}

// NewConn creates a connection handle with a buffered event channel.
func NewConn(partyID uuid.UUID) *Conn {
	return &Conn{
		Handle:        uuid.NewString(),
		PartyID:       partyID,
		EstablishedAt: time.Now().UTC(),
		Events:        make(chan *Event, 64),
	}
}

// TrySend enqueues an event without blocking; it reports false when the
// connection is closed or its buffer is full. A router may still hold this
// conn in a snapshot taken just before the registry dropped it, so the
// closed check has to be under the same lock Close takes.
func (c *Conn) TrySend(ev *Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

// Close closes the connection's event channel. Idempotent.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}
