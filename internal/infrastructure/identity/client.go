package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snapmatch/snapmatch/internal/domain/party"
	"github.com/snapmatch/snapmatch/internal/domain/request"
)

// Client verifies bearer tokens against the platform identity service and
// implements party.Verifier. Tokens are opaque to this subsystem; the
// identity service's introspection endpoint is the source of truth.
type Client struct {
	baseURL        string
	resourceSecret string
	httpClient     *http.Client
}

func NewClient(baseURL, resourceSecret string) *Client {
	return &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		resourceSecret: strings.TrimSpace(resourceSecret),
		httpClient:     &http.Client{Timeout: 5 * time.Second},
	}
}

type introspectResponse struct {
	Active      bool   `json:"active"`
	PartyID     string `json:"party_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

func (c *Client) Verify(ctx context.Context, token string) (*party.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing access token", request.ErrForbidden)
	}
	if c.baseURL == "" || c.resourceSecret == "" {
		return nil, fmt.Errorf("identity verification is not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/introspect", nil)
	if err != nil {
		return nil, fmt.Errorf("build introspection request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Resource-Secret", c.resourceSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call identity introspection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity introspection status %d", resp.StatusCode)
	}

	var payload introspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode introspection response: %w", err)
	}
	if !payload.Active {
		return nil, fmt.Errorf("%w: inactive access token", request.ErrForbidden)
	}

	partyID, err := uuid.Parse(strings.TrimSpace(payload.PartyID))
	if err != nil {
		return nil, fmt.Errorf("introspection returned invalid party id: %w", err)
	}
	role := party.Role(strings.ToUpper(strings.TrimSpace(payload.Role)))
	if !party.ValidateRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", request.ErrForbidden, payload.Role)
	}

	return &party.Identity{
		PartyID:     partyID,
		Role:        role,
		DisplayName: strings.TrimSpace(payload.DisplayName),
	}, nil
}
