package httpx

import (
	"log/slog"
	"net/http"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// WitnessHandlers serves the witness report API.
type WitnessHandlers struct {
	Svc    *service.WitnessService
	Logger *slog.Logger
}

func (h *WitnessHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Create files a witness report. POST /api/witness-reports.
func (h *WitnessHandlers) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.CreateWitnessReportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	wr, err := h.Svc.Create(r.Context(), id, &req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, wr)
}

// List returns witness reports. GET /api/witness-reports.
func (h *WitnessHandlers) List(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	items, err := h.Svc.List(r.Context(), id, model.WitnessReportListOptions{Limit: limit, Offset: offset})
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	if items == nil {
		items = []*model.WitnessReport{}
	}
	WriteJSON(w, http.StatusOK, items)
}

// Update edits the testimony. PUT /api/witness-reports/{id}.
func (h *WitnessHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.UpdateWitnessReportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	wr, err := h.Svc.UpdateTestimony(r.Context(), id, r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, wr)
}

// Delete removes a witness report. DELETE /api/witness-reports/{id}.
func (h *WitnessHandlers) Delete(w http.ResponseWriter, r *http.Request) {
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
