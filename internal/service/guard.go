package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

// ErrGuardClosed is returned when starting a guard that was already closed.
var ErrGuardClosed = errors.New("guard closed")

// GuardState is a snapshot of a guard's decision.
type GuardState struct {
	Decision access.Decision `json:"decision"`
	// Reason is a metrics-style label for a denial, empty otherwise.
	Reason string `json:"reason,omitempty"`
	// Seq is the dispatch the state belongs to.
	Seq uint64 `json:"seq"`
}

// GuardOptions configures a Guard.
type GuardOptions struct {
	// Name labels metrics and logs, usually the route name.
	Name     string
	Resolver SubjectResolver
	// Allowed is read when a resolution settles, not when it is dispatched.
	Allowed func() access.RoleSet
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Guard tracks the access decision for one resource while auth events
// arrive. Every dispatch gets a sequence number and only the most recently
// dispatched resolution may settle the state. After Close, late results are
// dropped.
type Guard struct {
	name     string
	resolver SubjectResolver
	allowed  func() access.RoleSet
	metrics  *metrics.Metrics
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	seq     uint64
	state   GuardState
	started bool
	closed  bool
	sub     ports.AuthEventSubscription
	changes chan struct{}
}

// NewGuard constructs a Guard in the Pending state.
func NewGuard(opts GuardOptions) *Guard {
	if opts.Resolver == nil {
		panic("SubjectResolver is required")
	}
	if opts.Allowed == nil {
		panic("Allowed is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Guard{
		name:     opts.Name,
		resolver: opts.Resolver,
		allowed:  opts.Allowed,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "guard", "guard", opts.Name),
		ctx:      ctx,
		cancel:   cancel,
		state:    GuardState{Decision: access.Pending},
		changes:  make(chan struct{}, 1),
	}
}

// Start subscribes to auth events for subject and dispatches the initial
// resolution. Each event dispatches a new resolution. A nil subject starts
// signed out with no subscription. At most one subscription is held.
func (g *Guard) Start(ctx context.Context, stream ports.AuthEventStream, subject *domainauth.Subject) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGuardClosed
	}
	if g.started {
		g.mu.Unlock()
		return errors.New("guard already started")
	}
	g.started = true
	g.mu.Unlock()

	var sub ports.AuthEventSubscription
	if subject != nil && subject.ID != "" {
		s, err := stream.Subscribe(ctx, subject.ID)
		if err != nil {
			return err
		}
		sub = s
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		if sub != nil {
			_ = sub.Close()
		}
		return ErrGuardClosed
	}
	g.sub = sub
	if sub != nil {
		g.wg.Add(1)
	}
	g.mu.Unlock()

	g.Dispatch(subject)
	if sub != nil {
		go g.listen(sub)
	}
	return nil
}

func (g *Guard) listen(sub ports.AuthEventSubscription) {
	defer g.wg.Done()
	for {
		select {
		case <-g.ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			g.Dispatch(ev.Subject)
		}
	}
}

// Dispatch enters Pending and starts resolving subject. It returns the
// dispatch sequence number, or 0 if the guard is closed.
func (g *Guard) Dispatch(subject *domainauth.Subject) uint64 {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return 0
	}
	g.seq++
	seq := g.seq
	g.state = GuardState{Decision: access.Pending, Seq: seq}
	g.notifyLocked()
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		res := g.resolver.Resolve(g.ctx, subject)
		g.settle(seq, res)
	}()
	return seq
}

func (g *Guard) settle(seq uint64, res access.Resolution) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || seq != g.seq {
		return
	}
	d, err := access.Check(res, g.allowed())
	g.state = GuardState{Decision: d, Seq: seq}
	if err != nil {
		g.state.Reason = access.ReasonLabel(err)
	}
	g.notifyLocked()
	g.metrics.AccessDecision(g.name, d, err)
	if err != nil {
		g.logger.Debug("access denied", "seq", seq, "reason", g.state.Reason)
	}
}

func (g *Guard) notifyLocked() {
	select {
	case g.changes <- struct{}{}:
	default:
	}
}

// State returns the current decision.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Changes signals after every state change. Signals coalesce, so readers
// should call State. The channel is closed by Close.
func (g *Guard) Changes() <-chan struct{} { return g.changes }

// Close releases the subscription, cancels in-flight lookups and waits for
// them to return. It is safe to call more than once.
func (g *Guard) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	sub := g.sub
	g.sub = nil
	g.mu.Unlock()

	g.cancel()
	var err error
	if sub != nil {
		err = sub.Close()
	}
	g.wg.Wait()
	close(g.changes)
	return err
}
