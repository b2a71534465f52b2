package request

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapmatch/snapmatch/internal/domain/party"
)

func TestNew(t *testing.T) {
	clientID := uuid.New()
	photographerID := uuid.New()

	req := New(clientID, photographerID, "Alex")

	require.NotNil(t, req)
	assert.NotEqual(t, uuid.Nil, req.RequestID)
	assert.Equal(t, clientID, req.ClientID)
	assert.Equal(t, photographerID, req.PhotographerID)
	assert.Equal(t, "Alex", req.ClientDisplayName)
	assert.Equal(t, StatePending, req.State)
	assert.Nil(t, req.ArtifactReference)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Equal(t, req.CreatedAt, req.UpdatedAt)
}

func TestPhotoRequest_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{name: "PENDING -> ACCEPTED", from: StatePending, to: StateAccepted, expected: true},
		{name: "PENDING -> REJECTED", from: StatePending, to: StateRejected, expected: true},
		{name: "PENDING -> CANCELLED", from: StatePending, to: StateCancelled, expected: true},
		{name: "PENDING -> COMPLETED (invalid)", from: StatePending, to: StateCompleted, expected: false},

		{name: "ACCEPTED -> COMPLETED", from: StateAccepted, to: StateCompleted, expected: true},
		{name: "ACCEPTED -> REJECTED (invalid)", from: StateAccepted, to: StateRejected, expected: false},
		{name: "ACCEPTED -> CANCELLED (invalid)", from: StateAccepted, to: StateCancelled, expected: false},
		{name: "ACCEPTED -> PENDING (invalid)", from: StateAccepted, to: StatePending, expected: false},

		{name: "COMPLETED is terminal", from: StateCompleted, to: StatePending, expected: false},
		{name: "REJECTED is terminal", from: StateRejected, to: StateAccepted, expected: false},
		{name: "CANCELLED is terminal", from: StateCancelled, to: StateAccepted, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := New(uuid.New(), uuid.New(), "")
			req.State = tt.from
			assert.Equal(t, tt.expected, req.CanTransitionTo(tt.to))
		})
	}
}

func TestPhotoRequest_IsTerminal(t *testing.T) {
	req := New(uuid.New(), uuid.New(), "")
	assert.False(t, req.IsTerminal())

	for _, state := range []State{StateCompleted, StateRejected, StateCancelled} {
		req.State = state
		assert.True(t, req.IsTerminal(), string(state))
	}

	req.State = StateAccepted
	assert.False(t, req.IsTerminal())
}

func TestPhotoRequest_IsActive(t *testing.T) {
	req := New(uuid.New(), uuid.New(), "")
	assert.True(t, req.IsActive())

	req.State = StateAccepted
	assert.True(t, req.IsActive())

	req.State = StateRejected
	assert.False(t, req.IsActive())
}

func TestPhotoRequest_IsStale(t *testing.T) {
	req := New(uuid.New(), uuid.New(), "")
	now := time.Now().UTC()

	assert.False(t, req.IsStale(10*time.Minute, now))

	req.CreatedAt = now.Add(-11 * time.Minute)
	assert.True(t, req.IsStale(10*time.Minute, now))
}

func TestPhotoRequest_IsParty(t *testing.T) {
	clientID := uuid.New()
	photographerID := uuid.New()
	req := New(clientID, photographerID, "")

	assert.True(t, req.IsParty(clientID))
	assert.True(t, req.IsParty(photographerID))
	assert.False(t, req.IsParty(uuid.New()))
}

func TestPhotoRequest_Accept(t *testing.T) {
	t.Run("photographer accepts pending request", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")

		err := req.Accept(req.PhotographerID)

		require.NoError(t, err)
		assert.Equal(t, StateAccepted, req.State)
	})

	t.Run("forbidden for anyone but the named photographer", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")

		err := req.Accept(req.ClientID)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, StatePending, req.State)
	})

	t.Run("invalid once terminal", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")
		req.State = StateRejected

		err := req.Accept(req.PhotographerID)

		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, StateRejected, req.State)
	})
}

func TestPhotoRequest_Reject(t *testing.T) {
	t.Run("photographer rejects pending request", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")

		err := req.Reject(req.PhotographerID)

		require.NoError(t, err)
		assert.Equal(t, StateRejected, req.State)
	})

	t.Run("invalid after accept", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")
		require.NoError(t, req.Accept(req.PhotographerID))

		err := req.Reject(req.PhotographerID)

		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, StateAccepted, req.State)
	})
}

func TestPhotoRequest_Complete(t *testing.T) {
	t.Run("photographer completes accepted request", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")
		require.NoError(t, req.Accept(req.PhotographerID))

		err := req.Complete(req.PhotographerID, "blob://photos/abc123")

		require.NoError(t, err)
		assert.Equal(t, StateCompleted, req.State)
		require.NotNil(t, req.ArtifactReference)
		assert.Equal(t, "blob://photos/abc123", *req.ArtifactReference)
	})

	t.Run("invalid from pending", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")

		err := req.Complete(req.PhotographerID, "blob://photos/abc123")

		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Nil(t, req.ArtifactReference)
	})

	t.Run("forbidden for the client", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")
		require.NoError(t, req.Accept(req.PhotographerID))

		err := req.Complete(req.ClientID, "blob://photos/abc123")

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestPhotoRequest_Cancel(t *testing.T) {
	t.Run("client cancels own pending request", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")

		err := req.Cancel(req.ClientID, party.RoleClient)

		require.NoError(t, err)
		assert.Equal(t, StateCancelled, req.State)
	})

	t.Run("system cancels regardless of ownership", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")

		err := req.Cancel(uuid.Nil, party.RoleSystem)

		require.NoError(t, err)
		assert.Equal(t, StateCancelled, req.State)
	})

	t.Run("forbidden for the photographer", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")

		err := req.Cancel(req.PhotographerID, party.RolePhotographer)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, StatePending, req.State)
	})

	t.Run("no cancellation path once accepted", func(t *testing.T) {
		req := New(uuid.New(), uuid.New(), "")
		require.NoError(t, req.Accept(req.PhotographerID))

		err := req.Cancel(req.ClientID, party.RoleClient)

		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, StateAccepted, req.State)
	})
}
