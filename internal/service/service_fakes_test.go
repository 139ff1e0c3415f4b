package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moon-community/fto-queue-service/internal/domain"
	"github.com/moon-community/fto-queue-service/internal/events"
	"github.com/moon-community/fto-queue-service/internal/observability"
	"github.com/moon-community/fto-queue-service/internal/statusboard"
)

// fakeStore reproduces the repository's transactional semantics in memory:
// at most one active entry per actor, oldest-first claims scoped to a
// board, and all-or-nothing pair finishes.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []*domain.QueueEntry
	clock   func() time.Time

	enrollErr error
	claimErr  error
	leaveErr  error
	listErr   error
	// failPairFinish simulates a failure between the skip-locked claim and
	// the commit: the claim transaction rolls back and neither entry is
	// finished.
	failPairFinish bool
	// finishErrByID injects per-row failures into Finish (sweeper path).
	finishErrByID map[int64]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{clock: time.Now, finishErrByID: map[int64]error{}}
}

func (f *fakeStore) seed(actorID int64, role domain.Role, name string, board domain.BoardRef, createdAt time.Time) *domain.QueueEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry := &domain.QueueEntry{ID: f.nextID, DisplayName: name, Board: board, CreatedAt: createdAt}
	id := actorID
	if role == domain.RoleOfficer {
		entry.OfficerID = &id
	} else {
		entry.ProbationaryID = &id
	}
	f.entries = append(f.entries, entry)
	return entry
}

func (f *fakeStore) byID(id int64) *domain.QueueEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (f *fakeStore) activeCount(actorID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.entries {
		if e.Active() && e.ActorID() == actorID {
			count++
		}
	}
	return count
}

func (f *fakeStore) Enroll(_ context.Context, actorID int64, role domain.Role, displayName string, board domain.BoardRef) (*domain.QueueEntry, error) {
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	f.mu.Lock()
	for _, e := range f.entries {
		if e.Active() && e.ActorID() == actorID {
			f.mu.Unlock()
			return nil, domain.ErrAlreadyQueued
		}
	}
	f.mu.Unlock()
	return f.seed(actorID, role, displayName, board, f.clock()), nil
}

func (f *fakeStore) ClaimOldestWaiting(_ context.Context, claimantID int64, role domain.Role, board domain.BoardRef) (*domain.QueueEntry, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var oldest *domain.QueueEntry
	for _, e := range f.entries {
		if !e.Active() || e.Role() != role || e.Board != board || e.ID == claimantID {
			continue
		}
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, nil
	}
	if f.failPairFinish {
		return nil, errInjectedPairFinish
	}
	peerFinished := f.clock()
	claimantFinished := peerFinished
	oldest.FinishedAt = &peerFinished
	for _, e := range f.entries {
		if e.ID == claimantID {
			e.FinishedAt = &claimantFinished
		}
	}
	return oldest, nil
}

func (f *fakeStore) FinishAllActive(_ context.Context, actorID int64) ([]domain.QueueEntry, error) {
	if f.leaveErr != nil {
		return nil, f.leaveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var finished []domain.QueueEntry
	for _, e := range f.entries {
		if e.Active() && e.ActorID() == actorID {
			now := f.clock()
			e.FinishedAt = &now
			finished = append(finished, *e)
		}
	}
	return finished, nil
}

func (f *fakeStore) ListExpired(_ context.Context, ttl time.Duration) ([]domain.QueueEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := f.clock().Add(-ttl)
	var expired []domain.QueueEntry
	for _, e := range f.entries {
		if e.Active() && e.CreatedAt.Before(cutoff) {
			expired = append(expired, *e)
		}
	}
	return expired, nil
}

func (f *fakeStore) Finish(_ context.Context, queueID int64) error {
	if err := f.finishErrByID[queueID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == queueID && e.Active() {
			now := f.clock()
			e.FinishedAt = &now
			return nil
		}
	}
	return nil
}

func (f *fakeStore) ListActive(_ context.Context, board domain.BoardRef) ([]domain.QueueEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var active []domain.QueueEntry
	for _, e := range f.entries {
		if e.Active() && e.Board == board {
			active = append(active, *e)
		}
	}
	return active, nil
}

var errInjectedPairFinish = &injectedError{"injected pair finish failure"}

type injectedError struct{ msg string }

func (e *injectedError) Error() string { return e.msg }

type boardOp struct {
	op   string
	list statusboard.List
	name string
}

// fakeBoard records mutations and can be toggled to fail every call.
type fakeBoard struct {
	mu   sync.Mutex
	ops  []boardOp
	fail bool
}

func (b *fakeBoard) record(op string, list statusboard.List, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return &injectedError{"injected board failure"}
	}
	b.ops = append(b.ops, boardOp{op: op, list: list, name: name})
	return nil
}

func (b *fakeBoard) Append(_ context.Context, _ domain.BoardRef, list statusboard.List, name string) error {
	return b.record("append", list, name)
}

func (b *fakeBoard) Remove(_ context.Context, _ domain.BoardRef, list statusboard.List, name string) error {
	return b.record("remove", list, name)
}

func (b *fakeBoard) RemoveEverywhere(_ context.Context, _ domain.BoardRef, name string) error {
	return b.record("remove_everywhere", "", name)
}

func (b *fakeBoard) Snapshot(_ context.Context, _ domain.BoardRef) (map[statusboard.List][]string, error) {
	return map[statusboard.List][]string{}, nil
}

func (b *fakeBoard) opsSnapshot() []boardOp {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]boardOp{}, b.ops...)
}

// eventRecorder captures every published event.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) subscribeAll(d events.Dispatcher) {
	for _, t := range []events.EventType{
		events.EventQueueWaiting,
		events.EventQueuePaired,
		events.EventQueueLeft,
		events.EventQueueExpired,
	} {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
}

func (r *eventRecorder) byType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store    *fakeStore
	board    *fakeBoard
	recorder *eventRecorder
	metrics  *observability.Metrics
	queue    *QueueService
	sweeper  *SweeperService
}

func newFixture(resolverRoles map[int64]domain.Role, ttl time.Duration) *fixture {
	store := newFakeStore()
	board := &fakeBoard{}
	recorder := &eventRecorder{}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	recorder.subscribeAll(dispatcher)

	deps := QueueDependencies{
		Store:      store,
		Board:      board,
		Resolver:   staticResolver(resolverRoles),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Metrics:    metrics,
	}
	return &fixture{
		store:    store,
		board:    board,
		recorder: recorder,
		metrics:  metrics,
		queue:    NewQueueService(deps),
		sweeper:  NewSweeperService(deps, ttl),
	}
}

type staticResolver map[int64]domain.Role

func (s staticResolver) ResolveRole(_ context.Context, actorID int64) (domain.Role, error) {
	role, ok := s[actorID]
	if !ok {
		return "", domain.ErrIneligible
	}
	return role, nil
}
