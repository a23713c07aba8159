package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

const defaultNotificationLimit = 50

// Notifier sends notifications. Sending never fails from the caller's view.
type Notifier interface {
	Send(ctx context.Context, req model.CreateNotificationRequest)
}

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Repo    core.NotificationRepository
	Bus     ports.NotificationBus // Optional: live fan-out
	Metrics *metrics.Metrics      // Optional
	Logger  *slog.Logger          // Optional
}

// NotificationService stores notifications and fans them out to live listeners.
type NotificationService struct {
	repo    core.NotificationRepository
	bus     ports.NotificationBus
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ Notifier = (*NotificationService)(nil)

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(opts NotificationServiceOptions) *NotificationService {
	if opts.Repo == nil {
		panic("NotificationRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:    opts.Repo,
		bus:     opts.Bus,
		metrics: opts.Metrics,
		logger:  logger.With("component", "notification_service"),
	}
}

// Send stores the notification and publishes it. Failures are logged and
// swallowed so the action that triggered the notification still succeeds.
func (s *NotificationService) Send(ctx context.Context, req model.CreateNotificationRequest) {
	if err := req.Validate(); err != nil {
		s.logger.WarnContext(ctx, "invalid notification", "recipient_id", req.RecipientID, "error", err)
		s.metrics.NotificationSent(string(req.Kind), metrics.ResultNoop)
		return
	}

	n, err := s.repo.Create(ctx, &req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send notification",
			"recipient_id", req.RecipientID, "kind", req.Kind, "error", err)
		s.metrics.NotificationSent(string(req.Kind), metrics.ResultError)
		return
	}
	s.metrics.NotificationSent(string(req.Kind), metrics.ResultSuccess)

	if s.bus == nil {
		return
	}
	if pubErr := s.bus.Publish(ctx, *n); pubErr != nil {
		s.logger.WarnContext(ctx, "failed to publish notification",
			"notification_id", n.ID, "recipient_id", n.RecipientID, "error", pubErr)
	}
}

// List returns the recipient's notifications newest first.
func (s *NotificationService) List(ctx context.Context, opts model.NotificationListOptions) ([]*model.Notification, error) {
	if opts.RecipientID == "" {
		return nil, errors.New("recipient is required")
	}
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = defaultNotificationLimit
	}
	return s.repo.List(ctx, opts)
}

// MarkRead marks one of the recipient's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	return s.repo.MarkRead(ctx, id, recipientID)
}

// Delete removes one of the recipient's notifications.
func (s *NotificationService) Delete(ctx context.Context, id, recipientID string) (bool, error) {
	return s.repo.Delete(ctx, id, recipientID)
}

// Subscribe streams new notifications for recipientID.
func (s *NotificationService) Subscribe(ctx context.Context, recipientID string) (ports.NotificationSubscription, error) {
	if s.bus == nil {
		return nil, errors.New("notification bus not configured")
	}
	return s.bus.Subscribe(ctx, recipientID)
}
