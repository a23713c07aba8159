package httpx

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth          AuthServiceInterface
	Resolver      service.SubjectResolver
	Users         *service.UserService
	Reports       *service.ReportService
	Witness       *service.WitnessService
	Notifications *service.NotificationService
	Stats         *service.StatsService
	Feedback      *service.FeedbackService
	Evidence      *service.EvidenceService
	Tickets       *service.TicketIssuer
	Events        ports.AuthEventStream
	Metrics       *metrics.Metrics

	CookieDomain string
	// AllowedOrigins for websocket handshakes; empty means same host only.
	AllowedOrigins []string
	// AuthRateLimit throttles login, registration and feedback per client IP.
	AuthRateLimit RateLimitConfig
	MetricsPath   string
	Logger        *slog.Logger
}

//nolint:gochecknoglobals // route role sets, never mutated
var (
	roleUser   = usersOnly
	roleAdmin  = []domainauth.Role{domainauth.RoleAdmin}
	roleWorker = []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleLawyer}
	roleOwner  = []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleUser}
)

// NewRouter creates the HTTP handler with Recover, Logging and metrics middleware.
func NewRouter(s RouterServices) http.Handler {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	root := http.NewServeMux()
	mux := routeMux{ServeMux: root, metrics: s.Metrics}
	gate := &Gate{Sessions: s.Auth, Resolver: s.Resolver, Metrics: s.Metrics, Logger: logger}
	limit := RateLimit(s.AuthRateLimit)

	authH := &AuthHandlers{
		Svc:          s.Auth,
		Resolver:     s.Resolver,
		Users:        s.Users,
		Tickets:      s.Tickets,
		CookieDomain: s.CookieDomain,
		Logger:       logger,
	}
	registerAuthRoutes(mux, authH, gate, limit)

	guarded := func(pattern string, roles []domainauth.Role, h http.HandlerFunc) {
		mux.Handle(pattern, gate.RequireRoles(pattern, roles...)(h))
	}

	reports := &ReportHandlers{Svc: s.Reports, Logger: logger}
	guarded("POST /api/reports", roleUser, reports.Create)
	guarded("GET /api/reports", everyone, reports.List)
	guarded("GET /api/reports/{id}", everyone, reports.Get)
	guarded("PUT /api/reports/{id}", roleOwner, reports.Update)
	guarded("DELETE /api/reports/{id}", roleOwner, reports.Delete)
	guarded("POST /api/reports/{id}/assign", roleAdmin, reports.Assign)
	guarded("POST /api/reports/{id}/status", roleWorker, reports.UpdateStatus)
	guarded("PUT /api/reports/{id}/notes", roleWorker, reports.UpdateNotes)
	guarded("GET /api/reports/{id}/comments", everyone, reports.ListComments)
	guarded("POST /api/reports/{id}/comments", roleWorker, reports.AddComment)

	witness := &WitnessHandlers{Svc: s.Witness, Logger: logger}
	guarded("POST /api/witness-reports", roleUser, witness.Create)
	guarded("GET /api/witness-reports", roleOwner, witness.List)
	guarded("PUT /api/witness-reports/{id}", roleOwner, witness.Update)
	guarded("DELETE /api/witness-reports/{id}", roleOwner, witness.Delete)

	notes := &NotificationHandlers{Svc: s.Notifications, Logger: logger}
	guarded("GET /api/notifications", everyone, notes.List)
	guarded("POST /api/notifications/{id}/read", everyone, notes.MarkRead)
	guarded("DELETE /api/notifications/{id}", everyone, notes.Delete)

	admin := &AdminHandlers{Users: s.Users, Stats: s.Stats, Feedback: s.Feedback, Logger: logger}
	guarded("GET /api/admin/users", roleAdmin, admin.ListUsers)
	guarded("PUT /api/admin/users/{id}/role", roleAdmin, admin.ChangeRole)
	guarded("DELETE /api/admin/users/{id}", roleAdmin, admin.DeleteUser)
	guarded("GET /api/admin/stats", roleAdmin, admin.AdminStats)
	guarded("GET /api/admin/audit-logs", roleAdmin, admin.AuditLogs)
	guarded("GET /api/admin/feedback", roleAdmin, admin.ListFeedback)
	guarded("GET /api/lawyers", roleAdmin, admin.ListLawyers)

	profile := &ProfileHandlers{Users: s.Users, Feedback: s.Feedback, Evidence: s.Evidence, Logger: logger}
	guarded("GET /api/profile", everyone, profile.Get)
	guarded("PUT /api/profile", everyone, profile.Update)
	guarded("POST /api/evidence", everyone, profile.UploadEvidence)
	mux.Handle("POST /api/feedback", limit(http.HandlerFunc(profile.SubmitFeedback)))

	pages := &PageHandlers{
		Reports:       s.Reports,
		Witness:       s.Witness,
		Notifications: s.Notifications,
		Users:         s.Users,
		Stats:         s.Stats,
		Logger:        logger,
	}
	for _, p := range PageRoutes() {
		mux.Handle(p.Pattern, gate.RequireRoles(p.Name, p.Roles...)(pages.Handler(p.Name)))
	}

	ws := &WSHandlers{
		Tickets:       s.Tickets,
		Sessions:      s.Auth,
		Resolver:      s.Resolver,
		Events:        s.Events,
		Notifications: s.Notifications,
		Metrics:       s.Metrics,
		Upgrader:      websocket.Upgrader{CheckOrigin: checkOrigin(s.AllowedOrigins)},
		Logger:        logger,
	}
	mux.HandleFunc("GET /ws/guard", ws.Guard)
	mux.HandleFunc("GET /ws/notifications", ws.NotificationStream)

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	if s.Metrics != nil {
		path := s.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, s.Metrics.Handler())
	}

	return Chain(root, Recover(logger), Logging(logger))
}

// routeMux instruments every handler with its registered pattern.
type routeMux struct {
	*http.ServeMux
	metrics *metrics.Metrics
}

func (m routeMux) Handle(pattern string, h http.Handler) {
	m.ServeMux.Handle(pattern, m.metrics.Instrument(pattern, h))
}

func (m routeMux) HandleFunc(pattern string, h func(http.ResponseWriter, *http.Request)) {
	m.Handle(pattern, http.HandlerFunc(h))
}

func registerAuthRoutes(mux routeMux, h *AuthHandlers, gate *Gate, limit func(http.Handler) http.Handler) {
	mux.Handle("GET /auth/login", limit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.Handle("POST /auth/register", limit(gate.RequireSession(http.HandlerFunc(h.Register))))
	mux.Handle("POST /auth/ws-ticket", gate.RequireSession(http.HandlerFunc(h.WSTicket)))
}

// checkOrigin allows the listed origins, or same-host when none are listed.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil // gorilla default: same host
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, healthResponse)
}
