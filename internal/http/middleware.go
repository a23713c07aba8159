package httpx

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack lets websocket upgrades through the logging wrapper.
func (w *respWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first listed is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// SessionGetter is the part of the auth service the middleware needs.
type SessionGetter interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// Gate enforces sessions and per-route role sets. Roles are resolved from the
// profile store on every request and are never cached in the session.
type Gate struct {
	Sessions SessionGetter
	Resolver service.SubjectResolver
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func (g *Gate) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Gate) session(r *http.Request) *domainauth.Session {
	return liveSession(r, g.Sessions, sessionIDFromRequest(r), g.logger())
}

// liveSession looks up a session by id. Unknown and expired sessions are
// ordinary sign-outs; any other failure is a store problem and is logged so an
// outage is not mistaken for a wave of logouts.
func liveSession(r *http.Request, sessions SessionGetter, id string, logger *slog.Logger) *domainauth.Session {
	if id == "" {
		return nil
	}
	s, err := sessions.GetSession(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ports.ErrSessionNotFound) && !errors.Is(err, service.ErrSessionExpired) {
			logger.Warn("session lookup failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err))
		}
		return nil
	}
	return s
}

// RequireSession admits any request carrying a live session, whether or not
// the subject has a profile yet. Registration and the websocket ticket sit
// behind it.
func (g *Gate) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := g.session(r)
		if s == nil {
			deny(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), s)))
	})
}

// RequireRoles admits requests whose resolved role is in roles. The route
// name labels the decision metric.
func (g *Gate) RequireRoles(name string, roles ...domainauth.Role) func(http.Handler) http.Handler {
	allowed := access.NewRoleSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var subject *domainauth.Subject
			s := g.session(r)
			if s != nil {
				sub := s.Subject()
				subject = &sub
			}

			res := g.Resolver.Resolve(r.Context(), subject)
			decision, err := access.Check(res, allowed)
			g.Metrics.AccessDecision(name, decision, err)
			if decision != access.Allow {
				g.logger().DebugContext(r.Context(), "access denied",
					"route", name, "path", r.URL.Path, "reason", access.ReasonLabel(err))
				deny(w, r)
				return
			}

			id, _ := res.Identity()
			ctx := SetSessionInContext(r.Context(), s)
			ctx = SetIdentityInContext(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// errAccessDenied is the single body for every guard denial; the reason only
// appears in logs and metrics.
var errAccessDenied = errors.New("You do not have access to this page. Please sign in.") //nolint:staticcheck // user-facing text

// deny redirects browsers to sign-in and answers API clients with 401.
func deny(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "access_denied", Err: errAccessDenied})
		return
	}
	redirectToLogin(w, r)
}

// IsBrowserRequest determines if a request is from a browser based on the
// path prefix, HTMX headers and the Accept header.
func IsBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/ws/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// redirectToLogin sends the browser to the sign-in entry point with the
// current URL as redirect_uri. A 303 keeps the denied URL out of history.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectPath := redirectPathForRequest(r)
	if redirectPath == "" {
		redirectPath = "/"
	}
	loginURL := "/auth/login?redirect_uri=" + url.QueryEscape(redirectPath)

	if IsHTMX(r) {
		SetHXRedirect(w, loginURL)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
			return current
		}
	}
	return safeRedirectPath(r.URL.RequestURI())
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
	// IdleTTL drops buckets for clients not seen for this long.
	IdleTTL time.Duration
}

// RateLimit returns a per-client-IP token bucket middleware.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newIPLimiter(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				WriteError(w, ErrorParams{
					Code:    http.StatusTooManyRequests,
					ErrCode: "rate_limited",
					Err:     errors.New("Too many requests. Please wait a moment and try again."), //nolint:staticcheck // user-facing text
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	buckets   map[string]*ipBucket
	lastSweep time.Time
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 5 * time.Minute
	}
	return &ipLimiter{cfg: cfg, buckets: make(map[string]*ipBucket)}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	if ip == "" {
		ip = "unknown"
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.cfg.IdleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.cfg.IdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(rate.Limit(l.cfg.PerSecond), l.cfg.Burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}
