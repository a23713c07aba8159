package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// AdminHandlers serves user management, statistics and the admin logs.
type AdminHandlers struct {
	Users    *service.UserService
	Stats    *service.StatsService
	Feedback *service.FeedbackService
	Logger   *slog.Logger
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// ListUsers returns profiles. GET /api/admin/users?role=&limit=&offset=.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.ProfileListOptions{Limit: limit, Offset: offset}
	if raw := optionalQuery(r, "role"); raw != nil {
		role := domainauth.ParseRoleLoose(*raw)
		if !role.Valid() {
			WriteServiceError(w, r, h.logger(), apperrors.ValidationField("role", "role must be one of user, lawyer, admin"))
			return
		}
		opts.Role = &role
	}
	users, err := h.Users.ListUsers(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writeProfiles(w, users)
}

// ListLawyers returns lawyers for the assignment picker. GET /api/lawyers.
func (h *AdminHandlers) ListLawyers(w http.ResponseWriter, r *http.Request) {
	lawyers, err := h.Users.ListLawyers(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writeProfiles(w, lawyers)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole sets a user's role. PUT /api/admin/users/{id}/role.
func (h *AdminHandlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req changeRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.Users.ChangeRole(r.Context(), id, r.PathValue("id"), req.Role)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// DeleteUser removes a user profile. DELETE /api/admin/users/{id}.
func (h *AdminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	deleted, err := h.Users.DeleteUser(r.Context(), id, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writeDeleted(w, deleted)
}

// AdminStats returns dashboard aggregates. GET /api/admin/stats.
func (h *AdminHandlers) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.AdminStats(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// AuditLogs returns the audit trail. GET /api/admin/audit-logs.
func (h *AdminHandlers) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	logs, err := h.Feedback.ListAuditLogs(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	if logs == nil {
		logs = []*model.AuditLog{}
	}
	WriteJSON(w, http.StatusOK, logs)
}

// ListFeedback returns submitted feedback. GET /api/admin/feedback.
func (h *AdminHandlers) ListFeedback(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	items, err := h.Feedback.ListFeedback(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	if items == nil {
		items = []*model.Feedback{}
	}
	WriteJSON(w, http.StatusOK, items)
}

func writeProfiles(w http.ResponseWriter, ps []*model.Profile) {
	if ps == nil {
		ps = []*model.Profile{}
	}
	WriteJSON(w, http.StatusOK, ps)
}
