package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// PageRoute is a guarded page: a name usable as the /ws/guard route, the mux
// pattern, and the roles allowed to see it.
type PageRoute struct {
	Name    string
	Pattern string
	Roles   []domainauth.Role
}

// Allowed returns the route's role set.
func (p PageRoute) Allowed() access.RoleSet { return access.NewRoleSet(p.Roles...) }

// Page names.
const (
	PageDashboard       = "dashboard"
	PageReport          = "report"
	PageWitness         = "witness"
	PageCase            = "case"
	PageAdminDashboard  = "admin-dashboard"
	PageLawyerDashboard = "lawyer-dashboard"
	PageNotifications   = "notifications"
)

//nolint:gochecknoglobals // static role sets, never mutated
var (
	everyone  = []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleLawyer, domainauth.RoleUser}
	usersOnly = []domainauth.Role{domainauth.RoleUser}
)

//nolint:gochecknoglobals // static route table, never mutated
var pageRoutes = []PageRoute{
	{Name: PageDashboard, Pattern: "GET /dashboard", Roles: usersOnly},
	{Name: PageReport, Pattern: "GET /report", Roles: usersOnly},
	{Name: PageWitness, Pattern: "GET /witness", Roles: usersOnly},
	{Name: PageCase, Pattern: "GET /case/{id}", Roles: everyone},
	{Name: PageAdminDashboard, Pattern: "GET /admin-dashboard", Roles: []domainauth.Role{domainauth.RoleAdmin}},
	{Name: PageLawyerDashboard, Pattern: "GET /lawyer-dashboard", Roles: []domainauth.Role{domainauth.RoleLawyer}},
	{Name: PageNotifications, Pattern: "GET /notifications", Roles: everyone},
}

// PageRoutes returns the page route table.
func PageRoutes() []PageRoute {
	out := make([]PageRoute, len(pageRoutes))
	copy(out, pageRoutes)
	return out
}

// LookupPage finds a page route by name.
func LookupPage(name string) (PageRoute, bool) {
	for _, p := range pageRoutes {
		if p.Name == name {
			return p, true
		}
	}
	return PageRoute{}, false
}

// pagePath returns the browser path for a route name, used as the sign-in
// redirect target when a live guard denies.
func pagePath(p PageRoute, caseID string) string {
	path := strings.TrimPrefix(p.Pattern, "GET ")
	return strings.Replace(path, "{id}", caseID, 1)
}

// PageHandlers serve the JSON view models behind each page.
type PageHandlers struct {
	Reports       *service.ReportService
	Witness       *service.WitnessService
	Notifications *service.NotificationService
	Users         *service.UserService
	Stats         *service.StatsService
	Logger        *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Handler returns the view model handler for a page name.
func (h *PageHandlers) Handler(name string) http.HandlerFunc {
	switch name {
	case PageDashboard:
		return h.dashboard
	case PageReport:
		return h.reportForm
	case PageWitness:
		return h.witness
	case PageCase:
		return h.caseDetail
	case PageAdminDashboard:
		return h.adminDashboard
	case PageLawyerDashboard:
		return h.lawyerDashboard
	case PageNotifications:
		return h.notifications
	default:
		return http.NotFound
	}
}

type pageView struct {
	Page     string              `json:"page"`
	Identity domainauth.Identity `json:"identity"`
	Data     any                 `json:"data"`
}

func writePage(w http.ResponseWriter, name string, id domainauth.Identity, v any) {
	WriteJSON(w, http.StatusOK, pageView{Page: name, Identity: id, Data: v})
}

func (h *PageHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var (
		reports []*model.Report
		unread  []*model.Notification
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		reports, err = h.Reports.List(ctx, id, model.ReportListOptions{})
		return err
	})
	g.Go(func() (err error) {
		unread, err = h.Notifications.List(ctx, model.NotificationListOptions{RecipientID: id.SubjectID, UnreadOnly: true})
		return err
	})
	if err := g.Wait(); err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writePage(w, PageDashboard, id, map[string]any{
		"reports":       nonNil(reports),
		"notifications": nonNil(unread),
	})
}

func (h *PageHandlers) reportForm(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	writePage(w, PageReport, id, map[string]any{
		"types": []string{
			model.ReportTypeTheft,
			model.ReportTypeAssault,
			model.ReportTypeFraud,
			model.ReportTypeHarassment,
		},
	})
}

func (h *PageHandlers) witness(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	items, err := h.Witness.List(r.Context(), id, model.WitnessReportListOptions{})
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writePage(w, PageWitness, id, map[string]any{"witness_reports": nonNil(items)})
}

func (h *PageHandlers) caseDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	detail, err := h.Reports.Get(r.Context(), id, r.PathValue("id"))
	if err != nil {
		// In-page denial: the case page renders the message instead of redirecting.
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writePage(w, PageCase, id, detail)
}

func (h *PageHandlers) adminDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var (
		stats   *model.AdminStats
		reports []*model.Report
		lawyers []*model.Profile
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats, err = h.Stats.AdminStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		reports, err = h.Reports.List(ctx, id, model.ReportListOptions{})
		return err
	})
	g.Go(func() (err error) {
		lawyers, err = h.Users.ListLawyers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writePage(w, PageAdminDashboard, id, map[string]any{
		"stats":   stats,
		"reports": nonNil(reports),
		"lawyers": nonNil(lawyers),
	})
}

func (h *PageHandlers) lawyerDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	// An unparseable date filter is ignored on the page view.
	date, _ := model.ParseDate(r.URL.Query().Get("date"))
	reports, err := h.Reports.List(r.Context(), id, model.ReportListOptions{
		Type: optionalQuery(r, "type"),
		Date: date,
		Q:    optionalQuery(r, "q"),
	})
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writePage(w, PageLawyerDashboard, id, map[string]any{"cases": nonNil(reports)})
}

func (h *PageHandlers) notifications(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	items, err := h.Notifications.List(r.Context(), model.NotificationListOptions{RecipientID: id.SubjectID})
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writePage(w, PageNotifications, id, map[string]any{"notifications": nonNil(items)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
