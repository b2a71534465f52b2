package httpapi

import (
	"context"

	"github.com/snapmatch/snapmatch/internal/application/broker"
	"github.com/snapmatch/snapmatch/internal/domain/party"
)

type authContextKey string

const identityKey authContextKey = "identity"

func withIdentity(ctx context.Context, id *party.Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey, id)
}

func identityFromContext(ctx context.Context) *party.Identity {
	val := ctx.Value(identityKey)
	if v, ok := val.(*party.Identity); ok {
		return v
	}
	return nil
}

func actorFromIdentity(id *party.Identity) broker.Actor {
	return broker.Actor{
		PartyID:     id.PartyID,
		Role:        id.Role,
		DisplayName: id.DisplayName,
	}
}
