package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

const (
	defaultMaxEvidenceBytes = 10 << 20
	defaultEvidenceURLTTL   = 24 * time.Hour
	maxExtLen               = 10
)

// EvidenceServiceOptions groups dependencies for EvidenceService.
type EvidenceServiceOptions struct {
	Store    ports.EvidenceStore
	MaxBytes int64
	URLTTL   time.Duration
	Logger   *slog.Logger
}

// EvidenceUpload is one uploaded file.
type EvidenceUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// EvidenceResult locates a stored upload.
type EvidenceResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// EvidenceService stores files attached to reports and comments.
type EvidenceService struct {
	store    ports.EvidenceStore
	maxBytes int64
	urlTTL   time.Duration
	logger   *slog.Logger
}

// NewEvidenceService constructs a new EvidenceService.
func NewEvidenceService(opts EvidenceServiceOptions) *EvidenceService {
	if opts.Store == nil {
		panic("EvidenceStore is required")
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxEvidenceBytes
	}
	ttl := opts.URLTTL
	if ttl <= 0 {
		ttl = defaultEvidenceURLTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EvidenceService{
		store:    opts.Store,
		maxBytes: maxBytes,
		urlTTL:   ttl,
		logger:   logger.With("component", "evidence_service"),
	}
}

// MaxBytes is the upload size limit.
func (s *EvidenceService) MaxBytes() int64 { return s.maxBytes }

// Upload stores the file under evidence/<subjectId>/<uuid><ext> and returns
// a time-limited download URL.
func (s *EvidenceService) Upload(
	ctx context.Context,
	actor domainauth.Identity,
	up EvidenceUpload,
) (*EvidenceResult, error) {
	if up.Body == nil || up.Size <= 0 {
		return nil, apperrors.ValidationField("file", "A file is required.")
	}
	if up.Size > s.maxBytes {
		return nil, apperrors.ValidationField("file",
			fmt.Sprintf("File is too large. The limit is %d MB.", s.maxBytes>>20))
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := path.Join("evidence", actor.SubjectID, uuid.NewString()+cleanExt(up.Filename))
	obj := ports.EvidenceObject{Key: key, ContentType: contentType, Size: up.Size, Body: up.Body}
	if err := s.store.Put(ctx, obj); err != nil {
		return nil, fmt.Errorf("store evidence: %w", err)
	}
	url, err := s.store.URL(ctx, key, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("evidence url: %w", err)
	}
	s.logger.InfoContext(ctx, "evidence stored", "subject_id", actor.SubjectID, "key", key, "size", up.Size)
	return &EvidenceResult{Key: key, URL: url}, nil
}

func cleanExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
