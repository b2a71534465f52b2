package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	appBroker "github.com/snapmatch/snapmatch/internal/application/broker"
	appDelivery "github.com/snapmatch/snapmatch/internal/application/delivery"
	"github.com/snapmatch/snapmatch/internal/domain/party"
	partyMocks "github.com/snapmatch/snapmatch/internal/domain/party/mocks"
	photoMocks "github.com/snapmatch/snapmatch/internal/domain/photo/mocks"
	"github.com/snapmatch/snapmatch/internal/domain/request"
	requestMocks "github.com/snapmatch/snapmatch/internal/domain/request/mocks"
	"github.com/snapmatch/snapmatch/internal/infrastructure/presence"
)

type testServer struct {
	requests  *requestMocks.MockRepository
	directory *partyMocks.MockDirectory
	verifier  *partyMocks.MockVerifier
	registry  *presence.Registry
	handler   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	ctrl := gomock.NewController(t)
	requests := requestMocks.NewMockRepository(ctrl)
	directory := partyMocks.NewMockDirectory(ctrl)
	photos := photoMocks.NewMockRepository(ctrl)
	verifier := partyMocks.NewMockVerifier(ctrl)

	registry := presence.NewRegistry()
	router := appDelivery.NewRouter(registry, zerolog.Nop())
	brokerSvc := appBroker.NewService(requests, directory, photos, router, 10*time.Minute, zerolog.Nop())

	srv := NewServer(brokerSvc, registry, verifier, zerolog.Nop())
	return &testServer{
		requests:  requests,
		directory: directory,
		verifier:  verifier,
		registry:  registry,
		handler:   srv.Router(),
	}
}

func (ts *testServer) authAs(id *party.Identity) {
	ts.verifier.EXPECT().Verify(gomock.Any(), "token-ok").Return(id, nil).AnyTimes()
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func clientIdentity() *party.Identity {
	return &party.Identity{PartyID: uuid.New(), Role: party.RoleClient, DisplayName: "Alex"}
}

func TestRouter_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(t, ts.handler, http.MethodGet, "/v1/requests", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRequest(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ts := newTestServer(t)
		id := clientIdentity()
		ts.authAs(id)
		photographerID := uuid.New()

		ts.directory.EXPECT().
			GetByPartyID(gomock.Any(), photographerID).
			Return(&party.Photographer{PartyID: photographerID, DisplayName: "Sam"}, nil)
		ts.requests.EXPECT().
			FindActiveByPair(gomock.Any(), id.PartyID, photographerID).
			Return(nil, nil)
		ts.requests.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests", "token-ok", map[string]string{
			"photographer_id": photographerID.String(),
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		var got request.PhotoRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, request.StatePending, got.State)
		assert.Equal(t, id.PartyID, got.ClientID)
	})

	t.Run("invalid photographer id", func(t *testing.T) {
		ts := newTestServer(t)
		ts.authAs(clientIdentity())

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests", "token-ok", map[string]string{
			"photographer_id": "not-a-uuid",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("nil photographer id", func(t *testing.T) {
		ts := newTestServer(t)
		ts.authAs(clientIdentity())

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests", "token-ok", map[string]string{
			"photographer_id": uuid.Nil.String(),
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "INVALID_PARAM", body["error"])
	})

	t.Run("unknown photographer maps to 404", func(t *testing.T) {
		ts := newTestServer(t)
		id := clientIdentity()
		ts.authAs(id)
		photographerID := uuid.New()

		ts.directory.EXPECT().GetByPartyID(gomock.Any(), photographerID).Return(nil, nil)

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests", "token-ok", map[string]string{
			"photographer_id": photographerID.String(),
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("active pair maps to 409", func(t *testing.T) {
		ts := newTestServer(t)
		id := clientIdentity()
		ts.authAs(id)
		photographerID := uuid.New()
		existing := request.New(id.PartyID, photographerID, "")

		ts.directory.EXPECT().
			GetByPartyID(gomock.Any(), photographerID).
			Return(&party.Photographer{PartyID: photographerID}, nil)
		ts.requests.EXPECT().
			FindActiveByPair(gomock.Any(), id.PartyID, photographerID).
			Return(existing, nil)

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests", "token-ok", map[string]string{
			"photographer_id": photographerID.String(),
		})

		require.Equal(t, http.StatusConflict, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "CONFLICT", body["error"])
	})
}

func TestAcceptRequest(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		ts := newTestServer(t)
		req := request.New(uuid.New(), uuid.New(), "")
		id := &party.Identity{PartyID: req.PhotographerID, Role: party.RolePhotographer}
		ts.authAs(id)

		ts.requests.EXPECT().GetByID(gomock.Any(), req.RequestID).Return(req, nil)
		ts.requests.EXPECT().
			UpdateState(gomock.Any(), req.RequestID, request.StatePending, request.StateAccepted, nil).
			Return(true, nil)

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests/"+req.RequestID.String()+"/accept", "token-ok", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var got request.PhotoRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, request.StateAccepted, got.State)
	})

	t.Run("wrong photographer maps to 403", func(t *testing.T) {
		ts := newTestServer(t)
		req := request.New(uuid.New(), uuid.New(), "")
		ts.authAs(&party.Identity{PartyID: uuid.New(), Role: party.RolePhotographer})

		ts.requests.EXPECT().GetByID(gomock.Any(), req.RequestID).Return(req, nil)

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests/"+req.RequestID.String()+"/accept", "token-ok", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("lost race maps to 409 INVALID_STATE", func(t *testing.T) {
		ts := newTestServer(t)
		req := request.New(uuid.New(), uuid.New(), "")
		ts.authAs(&party.Identity{PartyID: req.PhotographerID, Role: party.RolePhotographer})

		cancelled := *req
		cancelled.State = request.StateCancelled
		ts.requests.EXPECT().GetByID(gomock.Any(), req.RequestID).Return(req, nil)
		ts.requests.EXPECT().
			UpdateState(gomock.Any(), req.RequestID, request.StatePending, request.StateAccepted, nil).
			Return(false, nil)
		ts.requests.EXPECT().GetByID(gomock.Any(), req.RequestID).Return(&cancelled, nil)

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests/"+req.RequestID.String()+"/accept", "token-ok", nil)

		require.Equal(t, http.StatusConflict, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "INVALID_STATE", body["error"])
	})

	t.Run("unknown request maps to 404", func(t *testing.T) {
		ts := newTestServer(t)
		ts.authAs(&party.Identity{PartyID: uuid.New(), Role: party.RolePhotographer})
		id := uuid.New()

		ts.requests.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests/"+id.String()+"/accept", "token-ok", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCompleteRequest(t *testing.T) {
	t.Run("requires artifact reference", func(t *testing.T) {
		ts := newTestServer(t)
		ts.authAs(&party.Identity{PartyID: uuid.New(), Role: party.RolePhotographer})

		rec := doRequest(t, ts.handler, http.MethodPost, "/v1/requests/"+uuid.NewString()+"/complete", "token-ok", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetRequest(t *testing.T) {
	ts := newTestServer(t)
	req := request.New(uuid.New(), uuid.New(), "Alex")
	ts.authAs(&party.Identity{PartyID: req.ClientID, Role: party.RoleClient})

	ts.requests.EXPECT().GetByID(gomock.Any(), req.RequestID).Return(req, nil)

	rec := doRequest(t, ts.handler, http.MethodGet, "/v1/requests/"+req.RequestID.String(), "token-ok", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got request.PhotoRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, req.RequestID, got.RequestID)
}

func TestListRequests(t *testing.T) {
	ts := newTestServer(t)
	id := clientIdentity()
	ts.authAs(id)

	ts.requests.EXPECT().
		ListByParty(gomock.Any(), id.PartyID, 50, 0).
		Return([]*request.PhotoRequest{request.New(id.PartyID, uuid.New(), "")}, nil)

	rec := doRequest(t, ts.handler, http.MethodGet, "/v1/requests", "token-ok", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Requests []*request.PhotoRequest `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Requests, 1)
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	id := clientIdentity()
	ts.authAs(id)

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token-ok")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The stream registers presence for the authenticated party.
	require.Eventually(t, func() bool {
		return len(ts.registry.Lookup(id.PartyID)) == 1
	}, time.Second, 10*time.Millisecond)

	// Closing the request context must drain the party's presence entry.
	cancel()
	require.Eventually(t, func() bool {
		return len(ts.registry.Lookup(id.PartyID)) == 0
	}, time.Second, 10*time.Millisecond)
}
