package party

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a party role.
type Role string

const (
	RoleClient       Role = "CLIENT"
	RolePhotographer Role = "PHOTOGRAPHER"
	// RoleSystem marks internal actors such as the expiry supervisor.
	RoleSystem Role = "SYSTEM"
)

// ValidateRole checks the role is one a connection may authenticate as.
func ValidateRole(role Role) bool {
	switch role {
	case RoleClient, RolePhotographer:
		return true
	default:
		return false
	}
}

// Photographer is a row in the photographer directory. Requests name a
// photographer by party id; the directory resolves it to the profile record.
type Photographer struct {
	ID             int64     `json:"id"`
	PhotographerID uuid.UUID `json:"photographerId"`
	PartyID        uuid.UUID `json:"partyId"`
	DisplayName    string    `json:"displayName"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Identity is a verified caller identity attached to a connection or call.
type Identity struct {
	PartyID     uuid.UUID
	Role        Role
	DisplayName string
}
