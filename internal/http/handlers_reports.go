package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ReportHandlers serves the case API.
type ReportHandlers struct {
	Svc    *service.ReportService
	Logger *slog.Logger
}

func (h *ReportHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// actor returns the identity placed in context by RequireRoles.
func actor(w http.ResponseWriter, r *http.Request) (domainauth.Identity, bool) {
	id, ok := GetIdentityFromContext(r.Context())
	if !ok {
		deny(w, r)
	}
	return id, ok
}

// Create files a report. POST /api/reports.
func (h *ReportHandlers) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.CreateReportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	rep, err := h.Svc.Create(r.Context(), id, &req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, rep)
}

// List returns reports scoped to the caller's role.
// GET /api/reports?type=&date=&q=&limit=&offset=.
func (h *ReportHandlers) List(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	date, err := model.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		WriteServiceError(w, r, h.logger(), apperrors.ValidationField("date", err.Error()))
		return
	}
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.ReportListOptions{
		Type:   optionalQuery(r, "type"),
		Date:   date,
		Q:      optionalQuery(r, "q"),
		Limit:  limit,
		Offset: offset,
	}
	reports, err := h.Svc.List(r.Context(), id, opts)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	if reports == nil {
		reports = []*model.Report{}
	}
	WriteJSON(w, http.StatusOK, reports)
}

// Get returns the case page. GET /api/reports/{id}.
func (h *ReportHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	detail, err := h.Svc.Get(r.Context(), id, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// Update edits a report. PUT /api/reports/{id}.
func (h *ReportHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.UpdateReportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	rep, err := h.Svc.Update(r.Context(), id, r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

// Delete removes a report. DELETE /api/reports/{id}.
func (h *ReportHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	deleted, err := h.Svc.Delete(r.Context(), id, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writeDeleted(w, deleted)
}

// Assign assigns a lawyer. POST /api/reports/{id}/assign.
func (h *ReportHandlers) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.AssignLawyerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	rep, err := h.Svc.Assign(r.Context(), id, r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

// UpdateStatus sets the case status. POST /api/reports/{id}/status.
func (h *ReportHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.UpdateStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	rep, err := h.Svc.UpdateStatus(r.Context(), id, r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

// UpdateNotes replaces the case notes. PUT /api/reports/{id}/notes.
func (h *ReportHandlers) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.UpdateNotesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	rep, err := h.Svc.UpdateNotes(r.Context(), id, r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

// ListComments returns case comments. GET /api/reports/{id}/comments.
func (h *ReportHandlers) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	comments, err := h.Svc.ListComments(r.Context(), id, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	WriteJSON(w, http.StatusOK, comments)
}

// AddComment posts a comment. POST /api/reports/{id}/comments.
func (h *ReportHandlers) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.CreateCommentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	c, err := h.Svc.AddComment(r.Context(), id, r.PathValue("id"), &req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, c)
}

func writeDeleted(w http.ResponseWriter, deleted bool) {
	if !deleted {
		WriteJSON(w, http.StatusNotFound, errorBody{Error: string(apperrors.ErrCodeNotFound), Message: "not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
