package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	SessionGetter
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Resolver     service.SubjectResolver
	Users        *service.UserService
	Tickets      *service.TicketIssuer
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) cookies() cookieJar { return cookieJar{domain: h.CookieDomain} }

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	// An empty redirect sends the subject to its role landing page after callback.
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	target := redirectURI
	if target == "" {
		target = "/"
	}

	result, err := h.Svc.BeginLogin(r.Context(), target)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("Sign-in is unavailable. Please try again."), //nolint:staticcheck // user-facing text
		})
		return
	}

	jar := h.cookies()
	jar.set(w, r, cookieOAuthState, result.State, oauthCookieMaxAge)
	jar.set(w, r, cookieOAuthNonce, result.Nonce, oauthCookieMaxAge)
	if redirectURI != "" {
		jar.set(w, r, cookieLoginRedirect, redirectURI, oauthCookieMaxAge)
	} else {
		jar.clear(w, r, cookieLoginRedirect)
	}

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(cookieOAuthState)
	if err != nil || state == "" || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(cookieOAuthNonce)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	sess, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "login_completion_failed",
			Err:     errors.New("Sign-in failed. Please try again."), //nolint:staticcheck // user-facing text
		})
		return
	}

	jar := h.cookies()
	jar.setSession(w, r, sess)
	jar.clear(w, r, cookieOAuthState)
	jar.clear(w, r, cookieOAuthNonce)

	http.Redirect(w, r, h.postLoginRedirect(w, r, sess), http.StatusFound)
}

// postLoginRedirect prefers the page the subject asked for, falling back to
// the landing page for its current role.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request, sess *domainauth.Session) string {
	if ck, err := r.Cookie(cookieLoginRedirect); err == nil {
		h.cookies().clear(w, r, cookieLoginRedirect)
		if p := safeRedirectPath(ck.Value); p != "" && p != "/" {
			return p
		}
	}
	return h.landing(r.Context(), sess).LandingPath()
}

func (h *AuthHandlers) landing(ctx context.Context, sess *domainauth.Session) domainauth.Role {
	if h.Resolver == nil || sess == nil {
		return domainauth.RoleNone
	}
	sub := sess.Subject()
	id, ok := h.Resolver.Resolve(ctx, &sub).Identity()
	if !ok {
		return domainauth.RoleNone
	}
	return id.Role
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r); id != "" {
		if err := h.Svc.Logout(r.Context(), id); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.cookies().clear(w, r, cookieSession)

	const signedOut = "/auth/login"
	if isAJAX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": signedOut})
		return
	}
	http.Redirect(w, r, signedOut, http.StatusSeeOther)
}

type statusResponse struct {
	Authenticated bool                `json:"authenticated"`
	Subject       *domainauth.Subject `json:"subject,omitempty"`
	Role          domainauth.Role     `json:"role,omitempty"`
	Landing       string              `json:"landing,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
}

// Status returns the current authentication status and resolved role.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromRequest(r)
	if id == "" {
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}
	sess, err := h.Svc.GetSession(r.Context(), id)
	if err != nil {
		h.cookies().clear(w, r, cookieSession)
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}

	sub := sess.Subject()
	role := h.landing(r.Context(), sess)
	WriteJSON(w, http.StatusOK, statusResponse{
		Authenticated: true,
		Subject:       &sub,
		Role:          role,
		Landing:       role.LandingPath(),
		ExpiresAt:     &sess.ExpiresAt,
	})
}

// Register creates the caller's profile.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		deny(w, r)
		return
	}
	var req model.CreateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.Users.Register(r.Context(), sess.Subject(), &req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"profile":     p,
		"redirect_to": p.Role.LandingPath(),
	})
}

// WSTicket issues a short-lived token for websocket handshakes.
// POST /auth/ws-ticket.
func (h *AuthHandlers) WSTicket(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		deny(w, r)
		return
	}
	token, exp, err := h.Tickets.Issue(*sess)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ticket": token, "expires_at": exp})
}
