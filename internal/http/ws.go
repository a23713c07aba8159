package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
)

// TicketVerifier checks websocket tickets.
type TicketVerifier interface {
	Verify(token string) (*service.TicketClaims, error)
}

// WSHandlers serve the live guard and notification streams. Browsers cannot
// send cookies cross-origin on a websocket reliably, so the handshake carries
// a short-lived ticket from POST /auth/ws-ticket.
type WSHandlers struct {
	Tickets       TicketVerifier
	Sessions      SessionGetter
	Resolver      service.SubjectResolver
	Events        ports.AuthEventStream
	Notifications *service.NotificationService
	Metrics       *metrics.Metrics
	Upgrader      websocket.Upgrader
	Logger        *slog.Logger
}

func (h *WSHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *WSHandlers) subject(r *http.Request) (*domainauth.Subject, bool) {
	claims, err := h.Tickets.Verify(r.URL.Query().Get("ticket"))
	if err != nil {
		return nil, false
	}
	// A ticket outlives nothing: signing out between issue and handshake
	// revokes it.
	sess := liveSession(r, h.Sessions, claims.SessionID, h.logger())
	if sess == nil || sess.SubjectID != claims.Subject {
		return nil, false
	}
	sub := sess.Subject()
	return &sub, true
}

// guardMessage is one pushed guard transition.
type guardMessage struct {
	Route    string          `json:"route"`
	Decision access.Decision `json:"decision"`
	Seq      uint64          `json:"seq"`
	// Redirect is set on deny: the sign-in entry point, to be navigated with
	// history replacement.
	Redirect string `json:"redirect,omitempty"`
}

// Guard streams pending/allow/deny for one page route as the caller's auth
// state changes. GET /ws/guard?route=<name>&id=<case id>&ticket=<ticket>.
func (h *WSHandlers) Guard(w http.ResponseWriter, r *http.Request) {
	route, ok := LookupPage(r.URL.Query().Get("route"))
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "unknown_route", Err: errors.New("unknown route")})
		return
	}
	subject, ok := h.subject(r)
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "access_denied", Err: errAccessDenied})
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, cancel)

	allowed := route.Allowed()
	g := service.NewGuard(service.GuardOptions{
		Name:     route.Name,
		Resolver: h.Resolver,
		Allowed:  func() access.RoleSet { return allowed },
		Metrics:  h.Metrics,
		Logger:   h.logger(),
	})
	defer g.Close()
	if err := g.Start(ctx, h.Events, subject); err != nil {
		h.logger().WarnContext(ctx, "guard start failed", "route", route.Name, "error", err)
		writeClose(conn, websocket.CloseInternalServerErr, "guard unavailable")
		return
	}

	login := "/auth/login?redirect_uri=" + url.QueryEscape(pagePath(route, r.URL.Query().Get("id")))
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-g.Changes():
			if !open {
				return
			}
			st := g.State()
			msg := guardMessage{Route: route.Name, Decision: st.Decision, Seq: st.Seq}
			if st.Decision == access.Deny {
				msg.Redirect = login
			}
			if err := writeJSONMessage(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := ping(conn); err != nil {
				return
			}
		}
	}
}

// NotificationStream streams new notifications for the caller.
// GET /ws/notifications?ticket=<ticket>.
func (h *WSHandlers) NotificationStream(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(r)
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "access_denied", Err: errAccessDenied})
		return
	}
	if _, ok := h.Resolver.Resolve(r.Context(), subject).Identity(); !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "access_denied", Err: errAccessDenied})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sub, err := h.Notifications.Subscribe(ctx, subject.ID)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	defer sub.Close()

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	go readPump(conn, cancel)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case n, open := <-sub.Notifications():
			if !open {
				writeClose(conn, websocket.CloseGoingAway, "stream closed")
				return
			}
			if err := writeJSONMessage(conn, n); err != nil {
				return
			}
		case <-ticker.C:
			if err := ping(conn); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and cancels when the peer goes away or
// stops answering pings.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSONMessage(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(v)
}

func ping(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.PingMessage, nil)
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
