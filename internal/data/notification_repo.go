package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crimetracker/crimetracker-api/internal/data/database"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// NotificationRepo provides database operations for notifications.
type NotificationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a notification.
func (r *NotificationRepo) Create(
	ctx context.Context,
	req *model.CreateNotificationRequest,
) (*model.Notification, error) {
	if req == nil {
		return nil, errors.New("create notification request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out, err := queryOne[model.Notification](ctx, r.DB, `
		INSERT INTO notifications (recipient_id, message, kind, report_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, recipient_id, message, kind, report_id, read, created_at`,
		req.RecipientID, req.Message, string(req.Kind), req.ReportID, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return out, nil
}

// List returns a recipient's notifications newest first.
func (r *NotificationRepo) List(
	ctx context.Context,
	opts model.NotificationListOptions,
) ([]*model.Notification, error) {
	limit, _ := pageBounds(opts.Limit, 0)
	qo := []database.ListQueryOption{
		database.WithColumns("id", "recipient_id", "message", "kind", "report_id", "read", "created_at"),
		database.WithCondition(database.WhereCond("recipient_id", database.Equal, opts.RecipientID)),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(limit),
	}
	if opts.UnreadOnly {
		qo = append(qo, database.WithCondition(database.WhereCond("read", database.Equal, false)))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("notifications", qo...))
	out, err := queryAll[model.Notification](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

// MarkRead marks one of the recipient's notifications read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	n, err := execAffected(ctx, r.DB,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n > 0, nil
}

// Delete removes one of the recipient's notifications.
func (r *NotificationRepo) Delete(ctx context.Context, id, recipientID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	n, err := execAffected(ctx, r.DB,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	return n > 0, nil
}
