package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	authmocks "github.com/crimetracker/crimetracker-api/internal/mocks/auth"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

type failingSessionStore struct {
	*authmocks.MemorySessionStore
	saveErr   error
	deleteErr error
}

func (f *failingSessionStore) Save(ctx context.Context, s domainauth.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemorySessionStore.Save(ctx, s)
}

func (f *failingSessionStore) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemorySessionStore.Delete(ctx, id)
}

func newTestAuthService(provider ports.AuthProvider, sessions ports.SessionStore, events ports.AuthEventStream) *AuthService {
	return NewAuthService(AuthServiceOptions{Provider: provider, Sessions: sessions, Events: events})
}

func TestNewAuthService_PanicsWithoutDeps(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{Sessions: authmocks.NewMemorySessionStore()}) })
	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{Provider: authmocks.NewMockAuthProvider()}) })
}

func TestAuthService_BeginLogin(t *testing.T) {
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), authmocks.NewMemorySessionStore(), nil)

	res, err := svc.BeginLogin(context.Background(), "http://localhost/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", res.AuthURL)
	assert.Equal(t, "state-1", res.State)
	assert.Equal(t, "nonce-1", res.Nonce)
}

func TestAuthService_BeginLogin_EmptyRedirectURL(t *testing.T) {
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), authmocks.NewMemorySessionStore(), nil)

	_, err := svc.BeginLogin(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestAuthService_BeginLogin_ProviderError(t *testing.T) {
	provider := &authmocks.MockAuthProvider{
		BeginFunc: func(context.Context, ports.BeginInput) (string, string, string, error) {
			return "", "", "", errors.New("idp unreachable")
		},
	}
	svc := newTestAuthService(provider, authmocks.NewMemorySessionStore(), nil)

	_, err := svc.BeginLogin(context.Background(), "http://localhost/cb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin auth flow")
}

func TestAuthService_CompleteLogin_Success(t *testing.T) {
	sessions := authmocks.NewMemorySessionStore()
	events := authmocks.NewMemoryAuthEventStream()
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), sessions, events)

	sess, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "mock-user-1", sess.SubjectID)
	assert.Equal(t, "mock.user@example.com", sess.Email)
	assert.Equal(t, "Mock User", sess.DisplayName)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
	assert.Equal(t, 1, sessions.Len())

	published := events.Published()
	require.Len(t, published, 1)
	assert.Equal(t, ports.CauseSignIn, published[0].Cause)
	require.NotNil(t, published[0].Subject)
	assert.Equal(t, "mock-user-1", published[0].Subject.ID)
}

func TestAuthService_CompleteLogin_SessionTTLOverridesProvider(t *testing.T) {
	svc := NewAuthService(AuthServiceOptions{
		Provider:   authmocks.NewMockAuthProvider(),
		Sessions:   authmocks.NewMemorySessionStore(),
		SessionTTL: 8 * time.Hour,
	})
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	sess, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(8*time.Hour), sess.ExpiresAt)
}

func TestAuthService_CompleteLogin_MissingParams(t *testing.T) {
	tests := []struct {
		name  string
		input CompleteLoginInput
		want  string
	}{
		{"missing code", CompleteLoginInput{State: "s", Nonce: "n"}, "authorization code is required"},
		{"missing state", CompleteLoginInput{Code: "c", Nonce: "n"}, "state parameter is required"},
		{"missing nonce", CompleteLoginInput{Code: "c", State: "s"}, "nonce parameter is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := authmocks.NewMemorySessionStore()
			svc := newTestAuthService(authmocks.NewMockAuthProvider(), sessions, nil)

			_, err := svc.CompleteLogin(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, 0, sessions.Len())
		})
	}
}

func TestAuthService_CompleteLogin_ExchangeError(t *testing.T) {
	provider := &authmocks.MockAuthProvider{
		ExchangeFunc: func(context.Context, ports.ExchangeInput) (domainauth.ProviderIdentity, error) {
			return domainauth.ProviderIdentity{}, errors.New("bad code")
		},
	}
	events := authmocks.NewMemoryAuthEventStream()
	svc := newTestAuthService(provider, authmocks.NewMemorySessionStore(), events)

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange authorization code")
	assert.Empty(t, events.Published())
}

func TestAuthService_CompleteLogin_SessionSaveError(t *testing.T) {
	sessions := &failingSessionStore{MemorySessionStore: authmocks.NewMemorySessionStore(), saveErr: errors.New("redis down")}
	events := authmocks.NewMemoryAuthEventStream()
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), sessions, events)

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")
	assert.Empty(t, events.Published())
}

func TestAuthService_GetSession(t *testing.T) {
	sessions := authmocks.NewMemorySessionStore()
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), sessions, nil)
	ctx := context.Background()

	live := domainauth.Session{ID: "live", SubjectID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, live))

	got, err := svc.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.SubjectID)

	_, err = svc.GetSession(ctx, "")
	require.Error(t, err)

	_, err = svc.GetSession(ctx, "missing")
	require.ErrorIs(t, err, authmocks.ErrNotFound)
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	sessions := authmocks.NewMemorySessionStore()
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), sessions, nil)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "old", SubjectID: "u1", ExpiresAt: time.Now().Add(time.Hour)}))
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := svc.GetSession(ctx, "old")
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, sessions.Len())
}

func TestAuthService_Logout(t *testing.T) {
	sessions := authmocks.NewMemorySessionStore()
	events := authmocks.NewMemoryAuthEventStream()
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), sessions, events)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "s1", SubjectID: "u1", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, svc.Logout(ctx, "s1"))
	assert.Equal(t, 0, sessions.Len())

	published := events.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "u1", published[0].SubjectID)
	assert.Equal(t, ports.CauseSignOut, published[0].Cause)
	assert.Nil(t, published[0].Subject)

	// Unknown and empty sessions still succeed without an event.
	require.NoError(t, svc.Logout(ctx, "s1"))
	require.NoError(t, svc.Logout(ctx, ""))
	assert.Len(t, events.Published(), 1)
}

func TestAuthService_Logout_DeleteError(t *testing.T) {
	sessions := &failingSessionStore{MemorySessionStore: authmocks.NewMemorySessionStore(), deleteErr: errors.New("redis down")}
	svc := newTestAuthService(authmocks.NewMockAuthProvider(), sessions, nil)

	err := svc.Logout(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete session")
}
