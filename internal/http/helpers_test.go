package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// mockAuthService is a test double for AuthServiceInterface.
type mockAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	getSessionFunc    func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc        func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/auth?state=test-state",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *mockAuthService) CompleteLogin(
	ctx context.Context,
	input service.CompleteLoginInput,
) (*domainauth.Session, error) {
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, input)
	}
	return testSession("test-session-id", "user-1"), nil
}

func (m *mockAuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	return testSession(sessionID, "user-1"), nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

// sessionsFor returns an auth double that knows only the given session IDs.
func sessionsFor(sessions map[string]string) *mockAuthService {
	return &mockAuthService{
		getSessionFunc: func(_ context.Context, id string) (*domainauth.Session, error) {
			subjectID, ok := sessions[id]
			if !ok {
				return nil, ports.ErrSessionNotFound
			}
			return testSession(id, subjectID), nil
		},
	}
}

func testSession(id, subjectID string) *domainauth.Session {
	return &domainauth.Session{
		ID:        id,
		SubjectID: subjectID,
		Email:     subjectID + "@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// resolverFunc adapts a function to service.SubjectResolver.
type resolverFunc func(ctx context.Context, subject *domainauth.Subject) access.Resolution

func (f resolverFunc) Resolve(ctx context.Context, subject *domainauth.Subject) access.Resolution {
	return f(ctx, subject)
}

// rolesBySubject resolves subjects from a fixed role table. Unknown subjects
// have no role.
func rolesBySubject(roles map[string]domainauth.Role) resolverFunc {
	return func(_ context.Context, subject *domainauth.Subject) access.Resolution {
		if subject == nil || subject.ID == "" {
			return access.Unauthenticated(access.ReasonSignedOut)
		}
		role, ok := roles[subject.ID]
		if !ok {
			return access.Unauthenticated(access.ReasonNoRole)
		}
		return access.Resolved(domainauth.Identity{SubjectID: subject.ID, Email: subject.Email, Role: role})
	}
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func withIdentity(r *http.Request, id domainauth.Identity) *http.Request {
	return r.WithContext(SetIdentityInContext(r.Context(), id))
}

func apiRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body=%s", w.Body.String())
	return v
}

var (
	adminIdentity  = domainauth.Identity{SubjectID: "admin-1", Email: "admin@example.com", Role: domainauth.RoleAdmin}
	lawyerIdentity = domainauth.Identity{SubjectID: "lawyer-1", Email: "lawyer@example.com", Role: domainauth.RoleLawyer}
	userIdentity   = domainauth.Identity{SubjectID: "user-1", Email: "user@example.com", Role: domainauth.RoleUser}
	otherIdentity  = domainauth.Identity{SubjectID: "user-2", Email: "other@example.com", Role: domainauth.RoleUser}
)
