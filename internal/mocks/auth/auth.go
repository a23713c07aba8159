package auth

// Package auth contains simple hand-written test doubles for auth and eventing ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider    = (*MockAuthProvider)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.AuthEventStream = (*MemoryAuthEventStream)(nil)
	_ ports.NotificationBus = (*MemoryNotificationBus)(nil)
	_ ports.EvidenceStore   = (*MemoryEvidenceStore)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.ProviderIdentity, error)

	AuthURL     string
	DefaultUser domainauth.ProviderIdentity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.ProviderIdentity{
			SubjectID:   "mock-user-1",
			Email:       "mock.user@example.com",
			DisplayName: "Mock User",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.ProviderIdentity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	user := m.DefaultUser
	if user.SubjectID == "" {
		user = domainauth.ProviderIdentity{SubjectID: "mock-user-1", Email: "mock.user@example.com"}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, fmt.Errorf("%w: %w", ErrNotFound, ports.ErrSessionNotFound)
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
var ErrNotFound = errors.New("not found")

// broker is an in-process keyed fan-out used by the memory event fakes.
type broker[T any] struct {
	mu        sync.Mutex
	subs      map[string]map[*memSub[T]]struct{}
	published []T
}

type memSub[T any] struct {
	b      *broker[T]
	key    string
	ch     chan T
	closed bool
}

func (b *broker[T]) publish(key string, v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, v)
	for s := range b.subs[key] {
		select {
		case s.ch <- v:
		default:
		}
	}
}

func (b *broker[T]) subscribe(key string) *memSub[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[string]map[*memSub[T]]struct{})
	}
	if b.subs[key] == nil {
		b.subs[key] = make(map[*memSub[T]]struct{})
	}
	s := &memSub[T]{b: b, key: key, ch: make(chan T, 16)}
	b.subs[key][s] = struct{}{}
	return s
}

func (b *broker[T]) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[key])
}

func (b *broker[T]) all() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]T(nil), b.published...)
}

func (s *memSub[T]) close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	delete(s.b.subs[s.key], s)
	close(s.ch)
}

// MemoryAuthEventStream is an in-process ports.AuthEventStream.
type MemoryAuthEventStream struct {
	b broker[ports.AuthEvent]
	// SubscribeErr, when set, is returned by Subscribe.
	SubscribeErr error
}

// NewMemoryAuthEventStream creates an empty stream.
func NewMemoryAuthEventStream() *MemoryAuthEventStream { return &MemoryAuthEventStream{} }

func (m *MemoryAuthEventStream) Publish(_ context.Context, ev ports.AuthEvent) error {
	m.b.publish(ev.SubjectID, ev)
	return nil
}

func (m *MemoryAuthEventStream) Subscribe(_ context.Context, subjectID string) (ports.AuthEventSubscription, error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}
	return authSub{m.b.subscribe(subjectID)}, nil
}

// Subscribers returns the number of open subscriptions for subjectID.
func (m *MemoryAuthEventStream) Subscribers(subjectID string) int { return m.b.count(subjectID) }

// Published returns every event published so far.
func (m *MemoryAuthEventStream) Published() []ports.AuthEvent { return m.b.all() }

type authSub struct{ s *memSub[ports.AuthEvent] }

func (a authSub) Events() <-chan ports.AuthEvent { return a.s.ch }
func (a authSub) Close() error                   { a.s.close(); return nil }

// MemoryNotificationBus is an in-process ports.NotificationBus.
type MemoryNotificationBus struct {
	b broker[model.Notification]
}

// NewMemoryNotificationBus creates an empty bus.
func NewMemoryNotificationBus() *MemoryNotificationBus { return &MemoryNotificationBus{} }

func (m *MemoryNotificationBus) Publish(_ context.Context, n model.Notification) error {
	m.b.publish(n.RecipientID, n)
	return nil
}

func (m *MemoryNotificationBus) Subscribe(_ context.Context, recipientID string) (ports.NotificationSubscription, error) {
	return notifSub{m.b.subscribe(recipientID)}, nil
}

// Published returns every notification published so far.
func (m *MemoryNotificationBus) Published() []model.Notification { return m.b.all() }

type notifSub struct{ s *memSub[model.Notification] }

func (n notifSub) Notifications() <-chan model.Notification { return n.s.ch }
func (n notifSub) Close() error                             { n.s.close(); return nil }

// MemoryEvidenceStore keeps uploaded objects in memory.
type MemoryEvidenceStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	PutErr  error
}

// NewMemoryEvidenceStore creates an empty store.
func NewMemoryEvidenceStore() *MemoryEvidenceStore {
	return &MemoryEvidenceStore{Objects: make(map[string][]byte)}
}

func (m *MemoryEvidenceStore) Put(_ context.Context, obj ports.EvidenceObject) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj.Body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[obj.Key] = buf.Bytes()
	return nil
}

func (m *MemoryEvidenceStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return "", ErrNotFound
	}
	return "https://evidence.test/" + key, nil
}

func (m *MemoryEvidenceStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}
