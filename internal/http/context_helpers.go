package httpx

import (
	"context"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

type (
	sessionKey  struct{}
	identityKey struct{}
)

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session stored by RequireSession.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*domainauth.Session)
	return s, ok && s != nil
}

// SetIdentityInContext stores the resolved identity for downstream handlers.
func SetIdentityInContext(ctx context.Context, id domainauth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentityFromContext returns the identity resolved by RequireRoles.
func GetIdentityFromContext(ctx context.Context) (domainauth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domainauth.Identity)
	return id, ok
}
