//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// NotificationKind classifies a notification.
type NotificationKind string

const (
	NotificationKindInfo NotificationKind = "info"
	NotificationKindCase NotificationKind = "case"
)

// Notification is a message addressed to one subject.
type Notification struct {
	ID          string           `json:"id"                  db:"id"`
	RecipientID string           `json:"recipient_id"        db:"recipient_id"`
	Message     string           `json:"message"             db:"message"`
	Kind        NotificationKind `json:"kind"                db:"kind"`
	ReportID    *string          `json:"report_id,omitempty" db:"report_id"`
	Read        bool             `json:"read"                db:"read"`
	CreatedAt   time.Time        `json:"created_at"          db:"created_at"`
}

// CreateNotificationRequest sends a notification.
type CreateNotificationRequest struct {
	RecipientID string
	Message     string
	Kind        NotificationKind
	ReportID    *string
}

// Validate validates CreateNotificationRequest, defaulting Kind to info.
func (r *CreateNotificationRequest) Validate() error {
	if strings.TrimSpace(r.RecipientID) == "" {
		return errors.New("recipient_id is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return errors.New("message is required")
	}
	if r.Kind == "" {
		r.Kind = NotificationKindInfo
	}
	if r.Kind != NotificationKindInfo && r.Kind != NotificationKindCase {
		return errors.New("invalid notification kind")
	}
	return nil
}

// NotificationListOptions filters a recipient's notifications.
type NotificationListOptions struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
}
