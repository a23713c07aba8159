package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// multipartOverhead is slack on top of the file limit for form boundaries and fields.
const multipartOverhead = 1 << 20

// ProfileHandlers serves the caller's profile, feedback and evidence uploads.
type ProfileHandlers struct {
	Users    *service.UserService
	Feedback *service.FeedbackService
	Evidence *service.EvidenceService
	Logger   *slog.Logger
}

func (h *ProfileHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Get returns the caller's profile. GET /api/profile.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	p, err := h.Users.Profile(r.Context(), id.SubjectID)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// Update applies profile settings. PUT /api/profile.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.UpdateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.Users.UpdateProfile(r.Context(), id.SubjectID, req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// SubmitFeedback stores public feedback. POST /api/feedback.
func (h *ProfileHandlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFeedbackRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	f, err := h.Feedback.Submit(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, f)
}

// UploadEvidence stores a multipart "file". POST /api/evidence.
func (h *ProfileHandlers) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	if h.Evidence == nil {
		WriteServiceError(w, r, h.logger(), &apperrors.AppError{
			Code:    apperrors.ErrCodeUnavailable,
			Message: "Evidence uploads are not available.",
		})
		return
	}
	limit := h.Evidence.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteServiceError(w, r, h.logger(), apperrors.ValidationField("file", "File is too large."))
			return
		}
		WriteServiceError(w, r, h.logger(), apperrors.ValidationField("file", "A file is required."))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteServiceError(w, r, h.logger(), apperrors.ValidationField("file", "A file is required."))
		return
	}
	defer file.Close()

	res, err := h.Evidence.Upload(r.Context(), id, service.EvidenceUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		WriteServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}
