package ports

import (
	"context"
	"io"
	"time"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// AuthEvent reports a change of authentication state for one subject. A nil
// Subject means the subject signed out. A role change is published with the
// subject still present so listeners re-resolve the profile.
type AuthEvent struct {
	SubjectID string              `json:"subject_id"`
	Subject   *domainauth.Subject `json:"subject,omitempty"`
	Cause     string              `json:"cause,omitempty"`
}

// Auth event causes.
const (
	CauseSignIn     = "sign_in"
	CauseSignOut    = "sign_out"
	CauseRoleChange = "role_change"
	CauseDeleted    = "deleted"
)

// AuthEventSubscription delivers events for one subject until closed.
type AuthEventSubscription interface {
	Events() <-chan AuthEvent
	Close() error
}

// AuthEventStream is the process-wide authentication-state change stream.
type AuthEventStream interface {
	Publish(ctx context.Context, ev AuthEvent) error
	Subscribe(ctx context.Context, subjectID string) (AuthEventSubscription, error)
}

// NotificationSubscription delivers new notifications for one recipient until closed.
type NotificationSubscription interface {
	Notifications() <-chan model.Notification
	Close() error
}

// NotificationBus fans out newly stored notifications to live listeners.
type NotificationBus interface {
	Publish(ctx context.Context, n model.Notification) error
	Subscribe(ctx context.Context, recipientID string) (NotificationSubscription, error)
}

// EvidenceObject is an upload headed for object storage.
type EvidenceObject struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// EvidenceStore stores uploaded evidence files.
type EvidenceStore interface {
	Put(ctx context.Context, obj EvidenceObject) error
	// URL returns a time-limited download link.
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}
