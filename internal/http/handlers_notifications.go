package httpx

import (
	"log/slog"
	"net/http"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// NotificationHandlers serves the caller's own notifications.
type NotificationHandlers struct {
	Svc    *service.NotificationService
	Logger *slog.Logger
}

func (h *NotificationHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List returns notifications newest first. GET /api/notifications?unread=true.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	limit, _ := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	items, err := h.Svc.List(r.Context(), model.NotificationListOptions{
		RecipientID: id.SubjectID,
		UnreadOnly:  r.URL.Query().Get("unread") == "true",
		Limit:       limit,
	})
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	if items == nil {
		items = []*model.Notification{}
	}
	WriteJSON(w, http.StatusOK, items)
}

// MarkRead marks one notification read. POST /api/notifications/{id}/read.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	updated, err := h.Svc.MarkRead(r.Context(), r.PathValue("id"), id.SubjectID)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writeDeleted(w, updated)
}

// Delete removes one notification. DELETE /api/notifications/{id}.
func (h *NotificationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	deleted, err := h.Svc.Delete(r.Context(), r.PathValue("id"), id.SubjectID)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	writeDeleted(w, deleted)
}
