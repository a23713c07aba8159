package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	authmocks "github.com/crimetracker/crimetracker-api/internal/mocks/auth"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

type resolverFunc func(ctx context.Context, s *domainauth.Subject) access.Resolution

func (f resolverFunc) Resolve(ctx context.Context, s *domainauth.Subject) access.Resolution {
	return f(ctx, s)
}

// stepResolver blocks every Resolve call until the test releases it.
type stepResolver struct {
	mu      sync.Mutex
	calls   []chan access.Resolution
	started chan struct{}
}

func newStepResolver() *stepResolver {
	return &stepResolver{started: make(chan struct{}, 64)}
}

func (s *stepResolver) Resolve(ctx context.Context, _ *domainauth.Subject) access.Resolution {
	ch := make(chan access.Resolution, 1)
	s.mu.Lock()
	s.calls = append(s.calls, ch)
	s.mu.Unlock()
	s.started <- struct{}{}

	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		return access.Unauthenticated(access.ReasonLookupFailure)
	}
}

func (s *stepResolver) waitCalls(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("resolver call %d never started", i+1)
		}
	}
}

func (s *stepResolver) release(i int, r access.Resolution) {
	s.mu.Lock()
	ch := s.calls[i]
	s.mu.Unlock()
	ch <- r
}

// dispatchStarted dispatches and waits until the resolution reaches the
// resolver, so call i of r always belongs to the i-th dispatch.
func dispatchStarted(t *testing.T, g *Guard, r *stepResolver) uint64 {
	t.Helper()
	seq := g.Dispatch(testSubject())
	r.waitCalls(t, 1)
	return seq
}

func resolvedAs(role domainauth.Role) access.Resolution {
	return access.Resolved(domainauth.Identity{SubjectID: "u1", Email: "u1@example.com", Role: role})
}

func staticRoles(roles ...domainauth.Role) func() access.RoleSet {
	set := access.NewRoleSet(roles...)
	return func() access.RoleSet { return set }
}

func testSubject() *domainauth.Subject { return &domainauth.Subject{ID: "u1", Email: "u1@example.com"} }

func waitForState(t *testing.T, g *Guard, want access.Decision, seq uint64) {
	t.Helper()
	require.Eventually(t, func() bool {
		st := g.State()
		return st.Decision == want && st.Seq == seq
	}, 2*time.Second, 5*time.Millisecond)
}

func TestGuard_StartsPending(t *testing.T) {
	g := NewGuard(GuardOptions{Name: "dashboard", Resolver: newStepResolver(), Allowed: staticRoles(domainauth.RoleUser)})
	defer g.Close()

	assert.Equal(t, access.Pending, g.State().Decision)
}

func TestGuard_LaterDispatchSettlesAfterEarlier(t *testing.T) {
	r := newStepResolver()
	g := NewGuard(GuardOptions{Name: "admin-dashboard", Resolver: r, Allowed: staticRoles(domainauth.RoleAdmin)})
	defer g.Close()

	dispatchStarted(t, g, r)
	seqB := dispatchStarted(t, g, r)

	r.release(0, resolvedAs(domainauth.RoleUser))
	r.release(1, resolvedAs(domainauth.RoleAdmin))
	waitForState(t, g, access.Allow, seqB)
}

func TestGuard_StaleResultDiscarded(t *testing.T) {
	r := newStepResolver()
	g := NewGuard(GuardOptions{Name: "admin-dashboard", Resolver: r, Allowed: staticRoles(domainauth.RoleAdmin)})
	defer g.Close()

	dispatchStarted(t, g, r)
	seqB := dispatchStarted(t, g, r)

	r.release(1, resolvedAs(domainauth.RoleAdmin))
	waitForState(t, g, access.Allow, seqB)

	// A finishes last with a denial; it must not overwrite B.
	r.release(0, resolvedAs(domainauth.RoleUser))
	g.wg.Wait()
	assert.Equal(t, GuardState{Decision: access.Allow, Seq: seqB}, g.State())
}

func TestGuard_DispatchReentersPending(t *testing.T) {
	r := newStepResolver()
	g := NewGuard(GuardOptions{Name: "dashboard", Resolver: r, Allowed: staticRoles(domainauth.RoleUser)})
	defer g.Close()

	seq := g.Dispatch(testSubject())
	r.waitCalls(t, 1)
	r.release(0, resolvedAs(domainauth.RoleUser))
	waitForState(t, g, access.Allow, seq)

	next := g.Dispatch(testSubject())
	assert.Equal(t, GuardState{Decision: access.Pending, Seq: next}, g.State())
}

func TestGuard_AllowedRolesReadAtEvaluation(t *testing.T) {
	var current atomic.Pointer[access.RoleSet]
	admins := access.NewRoleSet(domainauth.RoleAdmin)
	current.Store(&admins)

	r := newStepResolver()
	g := NewGuard(GuardOptions{
		Name:     "case",
		Resolver: r,
		Allowed:  func() access.RoleSet { return *current.Load() },
	})
	defer g.Close()

	seq := g.Dispatch(testSubject())
	r.waitCalls(t, 1)

	lawyers := access.NewRoleSet(domainauth.RoleLawyer)
	current.Store(&lawyers)
	r.release(0, resolvedAs(domainauth.RoleLawyer))
	waitForState(t, g, access.Allow, seq)
}

func TestGuard_DenyCarriesReason(t *testing.T) {
	g := NewGuard(GuardOptions{
		Name: "dashboard",
		Resolver: resolverFunc(func(context.Context, *domainauth.Subject) access.Resolution {
			return access.Unauthenticated(access.ReasonNoRole)
		}),
		Allowed: staticRoles(domainauth.RoleUser),
	})
	defer g.Close()

	seq := g.Dispatch(testSubject())
	waitForState(t, g, access.Deny, seq)
	assert.Equal(t, "no_role", g.State().Reason)
}

func TestGuard_CloseDiscardsLateResults(t *testing.T) {
	r := newStepResolver()
	g := NewGuard(GuardOptions{Name: "dashboard", Resolver: r, Allowed: staticRoles(domainauth.RoleUser)})

	seq := g.Dispatch(testSubject())
	r.waitCalls(t, 1)

	require.NoError(t, g.Close())
	assert.Equal(t, GuardState{Decision: access.Pending, Seq: seq}, g.State())
	assert.Zero(t, g.Dispatch(testSubject()))
	require.NoError(t, g.Close())

	// Drain the coalesced signal; the channel must then be closed.
	for range g.Changes() {
	}
}

func TestGuard_StartFollowsAuthEvents(t *testing.T) {
	var mu sync.Mutex
	role := domainauth.RoleUser
	resolver := resolverFunc(func(_ context.Context, s *domainauth.Subject) access.Resolution {
		if s == nil {
			return access.Unauthenticated(access.ReasonSignedOut)
		}
		mu.Lock()
		defer mu.Unlock()
		return resolvedAs(role)
	})

	stream := authmocks.NewMemoryAuthEventStream()
	g := NewGuard(GuardOptions{Name: "dashboard", Resolver: resolver, Allowed: staticRoles(domainauth.RoleUser)})
	ctx := context.Background()

	require.NoError(t, g.Start(ctx, stream, testSubject()))
	assert.Equal(t, 1, stream.Subscribers("u1"))
	waitForState(t, g, access.Allow, 1)

	mu.Lock()
	role = domainauth.RoleLawyer
	mu.Unlock()
	require.NoError(t, stream.Publish(ctx, ports.AuthEvent{SubjectID: "u1", Subject: testSubject(), Cause: ports.CauseRoleChange}))
	waitForState(t, g, access.Deny, 2)
	assert.Equal(t, "forbidden", g.State().Reason)

	require.NoError(t, stream.Publish(ctx, ports.AuthEvent{SubjectID: "u1", Cause: ports.CauseSignOut}))
	waitForState(t, g, access.Deny, 3)
	assert.Equal(t, "unauthenticated", g.State().Reason)

	require.Error(t, g.Start(ctx, stream, testSubject()))
	require.NoError(t, g.Close())
	assert.Equal(t, 0, stream.Subscribers("u1"))
}

func TestGuard_StartSignedOut(t *testing.T) {
	stream := authmocks.NewMemoryAuthEventStream()
	g := NewGuard(GuardOptions{
		Name: "dashboard",
		Resolver: resolverFunc(func(context.Context, *domainauth.Subject) access.Resolution {
			return access.Unauthenticated(access.ReasonSignedOut)
		}),
		Allowed: staticRoles(domainauth.RoleUser),
	})
	defer g.Close()

	require.NoError(t, g.Start(context.Background(), stream, nil))
	waitForState(t, g, access.Deny, 1)
	assert.Equal(t, 0, stream.Subscribers(""))
}

func TestGuard_StartSubscribeError(t *testing.T) {
	stream := authmocks.NewMemoryAuthEventStream()
	stream.SubscribeErr = errors.New("redis down")
	g := NewGuard(GuardOptions{Name: "dashboard", Resolver: newStepResolver(), Allowed: staticRoles(domainauth.RoleUser)})
	defer g.Close()

	require.Error(t, g.Start(context.Background(), stream, testSubject()))
	assert.Equal(t, access.Pending, g.State().Decision)
}

func TestGuard_StartAfterClose(t *testing.T) {
	g := NewGuard(GuardOptions{Name: "dashboard", Resolver: newStepResolver(), Allowed: staticRoles(domainauth.RoleUser)})
	require.NoError(t, g.Close())
	assert.ErrorIs(t, g.Start(context.Background(), authmocks.NewMemoryAuthEventStream(), testSubject()), ErrGuardClosed)
}

// Whatever order overlapping resolutions finish in, the last dispatch decides.
func TestGuard_LastDispatchWinsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("final state reflects the last dispatch", prop.ForAll(
		func(n int, seed int64) bool {
			r := newStepResolver()
			g := NewGuard(GuardOptions{Name: "p", Resolver: r, Allowed: staticRoles(domainauth.RoleAdmin)})
			defer g.Close()

			var last uint64
			for i := 0; i < n; i++ {
				last = dispatchStarted(t, g, r)
			}

			order := rand.New(rand.NewSource(seed)).Perm(n)
			for _, i := range order {
				res := resolvedAs(domainauth.RoleUser)
				if i == n-1 {
					res = resolvedAs(domainauth.RoleAdmin)
				}
				r.release(i, res)
			}
			g.wg.Wait()
			return g.State() == GuardState{Decision: access.Allow, Seq: last}
		},
		gen.IntRange(2, 6),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
