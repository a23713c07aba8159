package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

const subscriptionBuffer = 16

// subscription decodes JSON messages from one channel into values of T.
type subscription[T any] struct {
	ps     *redis.PubSub
	out    chan T
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func subscribe[T any](
	ctx context.Context,
	client redis.UniversalClient,
	channel string,
	logger *slog.Logger,
) (*subscription[T], error) {
	ps := client.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &subscription[T]{
		ps:     ps,
		out:    make(chan T, subscriptionBuffer),
		done:   make(chan struct{}),
		logger: logger.With("channel", channel),
	}
	go s.pump()
	return s, nil
}

func (s *subscription[T]) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		var v T
		if err := json.Unmarshal([]byte(msg.Payload), &v); err != nil {
			s.logger.Warn("dropping undecodable message", "error", err)
			continue
		}
		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}

func (s *subscription[T]) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func publishJSON(ctx context.Context, client redis.UniversalClient, channel string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// AuthEventStream carries authentication-state changes over Redis pub/sub,
// one channel per subject, so every API instance sees sign-outs and role
// changes made on any other.
type AuthEventStream struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewAuthEventStream creates an AuthEventStream on channels "auth:state:<subject>".
func NewAuthEventStream(client redis.UniversalClient, logger *slog.Logger) *AuthEventStream {
	return &AuthEventStream{client: client, prefix: "auth:state:", logger: logger}
}

// Publish sends ev to listeners of ev.SubjectID.
func (s *AuthEventStream) Publish(ctx context.Context, ev ports.AuthEvent) error {
	if ev.SubjectID == "" {
		return errors.New("auth event requires a subject id")
	}
	return publishJSON(ctx, s.client, s.prefix+ev.SubjectID, ev)
}

// Subscribe listens for events about subjectID.
func (s *AuthEventStream) Subscribe(ctx context.Context, subjectID string) (ports.AuthEventSubscription, error) {
	sub, err := subscribe[ports.AuthEvent](ctx, s.client, s.prefix+subjectID, s.logger)
	if err != nil {
		return nil, err
	}
	return authSubscription{sub}, nil
}

type authSubscription struct{ *subscription[ports.AuthEvent] }

func (a authSubscription) Events() <-chan ports.AuthEvent { return a.out }

// NotificationBus fans out stored notifications on "notifications:<recipient>".
type NotificationBus struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewNotificationBus creates a NotificationBus.
func NewNotificationBus(client redis.UniversalClient, logger *slog.Logger) *NotificationBus {
	return &NotificationBus{client: client, prefix: "notifications:", logger: logger}
}

// Publish sends n to live listeners of its recipient.
func (b *NotificationBus) Publish(ctx context.Context, n model.Notification) error {
	if n.RecipientID == "" {
		return errors.New("notification requires a recipient id")
	}
	return publishJSON(ctx, b.client, b.prefix+n.RecipientID, n)
}

// Subscribe listens for notifications addressed to recipientID.
func (b *NotificationBus) Subscribe(ctx context.Context, recipientID string) (ports.NotificationSubscription, error) {
	sub, err := subscribe[model.Notification](ctx, b.client, b.prefix+recipientID, b.logger)
	if err != nil {
		return nil, err
	}
	return notificationSubscription{sub}, nil
}

type notificationSubscription struct{ *subscription[model.Notification] }

func (n notificationSubscription) Notifications() <-chan model.Notification { return n.out }

var (
	_ ports.AuthEventStream = (*AuthEventStream)(nil)
	_ ports.NotificationBus = (*NotificationBus)(nil)
	_ ports.SessionStore    = (*SessionStore)(nil)
)
