package delivery

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapmatch/snapmatch/internal/domain/delivery"
	"github.com/snapmatch/snapmatch/internal/infrastructure/presence"
)

func testEvent(target uuid.UUID) *delivery.Event {
	return delivery.NewEvent(uuid.New(), delivery.EventAccepted, target, json.RawMessage(`{}`))
}

func TestRouter_DirectDelivery(t *testing.T) {
	registry := presence.NewRegistry()
	router := NewRouter(registry, zerolog.Nop())

	partyID := uuid.New()
	conn := delivery.NewConn(partyID)
	registry.Join(conn)

	router.Notify(partyID, testEvent(partyID))

	select {
	case ev := <-conn.Events:
		assert.Equal(t, delivery.EventAccepted, ev.Type)
		assert.Equal(t, partyID, ev.TargetPartyID)
	default:
		t.Fatal("expected event on connection")
	}
	assert.Equal(t, int64(0), router.Misses())
}

func TestRouter_DeliversToEveryPartyConnection(t *testing.T) {
	registry := presence.NewRegistry()
	router := NewRouter(registry, zerolog.Nop())

	partyID := uuid.New()
	a := delivery.NewConn(partyID)
	b := delivery.NewConn(partyID)
	registry.Join(a)
	registry.Join(b)

	router.Notify(partyID, testEvent(partyID))

	require.Len(t, a.Events, 1)
	require.Len(t, b.Events, 1)
}

// rescanRegistry simulates a reconnect landing between the first lookup and
// the second: Lookup finds nothing the first time it is asked.
type rescanRegistry struct {
	*presence.Registry
	missedFirst bool
}

func (r *rescanRegistry) Lookup(partyID uuid.UUID) []*delivery.Conn {
	if !r.missedFirst {
		r.missedFirst = true
		return nil
	}
	return r.Registry.Lookup(partyID)
}

func TestRouter_RescanDelivery(t *testing.T) {
	inner := presence.NewRegistry()
	registry := &rescanRegistry{Registry: inner}
	router := NewRouter(registry, zerolog.Nop())

	partyID := uuid.New()
	conn := delivery.NewConn(partyID)
	inner.Join(conn)

	router.Notify(partyID, testEvent(partyID))

	require.Len(t, conn.Events, 1)
	assert.Equal(t, int64(0), router.Misses())
}

// snapshotOnlyRegistry hides connections from Lookup entirely, forcing the
// tagged-broadcast layer.
type snapshotOnlyRegistry struct {
	*presence.Registry
}

func (r *snapshotOnlyRegistry) Lookup(uuid.UUID) []*delivery.Conn {
	return nil
}

func TestRouter_TaggedBroadcastFallback(t *testing.T) {
	inner := presence.NewRegistry()
	registry := &snapshotOnlyRegistry{Registry: inner}
	router := NewRouter(registry, zerolog.Nop())

	target := uuid.New()
	bystander := uuid.New()
	targetConn := delivery.NewConn(target)
	bystanderConn := delivery.NewConn(bystander)
	inner.Join(targetConn)
	inner.Join(bystanderConn)

	router.Notify(target, testEvent(target))

	require.Len(t, targetConn.Events, 1)
	assert.Equal(t, int64(0), router.Misses())

	// The bystander got the frame too, tagged for the target so its
	// transport can discard it.
	require.Len(t, bystanderConn.Events, 1)
	ev := <-bystanderConn.Events
	assert.Equal(t, target, ev.TargetPartyID)
	assert.NotEqual(t, bystander, ev.TargetPartyID)
}

func TestRouter_MissWhenNoRecipient(t *testing.T) {
	registry := presence.NewRegistry()
	router := NewRouter(registry, zerolog.Nop())

	router.Notify(uuid.New(), testEvent(uuid.New()))

	assert.Equal(t, int64(1), router.Misses())
}

func TestRouter_BroadcastToBystandersOnlyStillCountsAsMiss(t *testing.T) {
	inner := presence.NewRegistry()
	registry := &snapshotOnlyRegistry{Registry: inner}
	router := NewRouter(registry, zerolog.Nop())

	inner.Join(delivery.NewConn(uuid.New()))

	target := uuid.New()
	router.Notify(target, testEvent(target))

	assert.Equal(t, int64(1), router.Misses())
}

func TestRouter_FullBufferDoesNotBlock(t *testing.T) {
	registry := presence.NewRegistry()
	router := NewRouter(registry, zerolog.Nop())

	partyID := uuid.New()
	conn := delivery.NewConn(partyID)
	registry.Join(conn)

	// Saturate the connection's buffer.
	for conn.TrySend(testEvent(partyID)) {
	}

	// Notify must return immediately even though every send fails.
	router.Notify(partyID, testEvent(partyID))

	// The saturated connection counts as unreachable.
	assert.Equal(t, int64(1), router.Misses())
}

func TestRouter_NilEventIsIgnored(t *testing.T) {
	registry := presence.NewRegistry()
	router := NewRouter(registry, zerolog.Nop())

	router.Notify(uuid.New(), nil)

	assert.Equal(t, int64(0), router.Misses())
}
